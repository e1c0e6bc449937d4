package metrics

import "context"

// Recorder receives sync events. The engine calls it sequentially.
type Recorder interface {
	RecordStatus(kind string, status string, count int)
	RecordAction(kind string, operation string, outcome string)
	RecordRemoteCall(kind string, operation string, err error)
	Flush(ctx context.Context) error
}

var _ Recorder = Noop{}

type Noop struct{}

func (Noop) RecordStatus(string, string, int) {}
func (Noop) RecordAction(string, string, string) {}
func (Noop) RecordRemoteCall(string, string, error) {}
func (Noop) Flush(context.Context) error { return nil }

// OrNoop returns recorder, or Noop when it is nil.
func OrNoop(recorder Recorder) Recorder {
	if recorder == nil {
		return Noop{}
	}
	return recorder
}
