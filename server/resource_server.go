package server

import (
	"context"

	"github.com/crmarques/reason/record"
)

// RecordServer is the remote collection of records of every kind.
type RecordServer interface {
	List(ctx context.Context, kind record.Kind) ([]record.RemoteRecord, error)
	Create(ctx context.Context, kind record.Kind, local record.LocalRecord) (record.RemoteRecord, error)
	Update(ctx context.Context, kind record.Kind, id string, local record.LocalRecord) (record.RemoteRecord, error)
	// Delete returns nil when the remote side confirmed the deletion.
	Delete(ctx context.Context, kind record.Kind, id string) error
}

// Runner invokes a deployed integral with a single user message.
type Runner interface {
	Run(ctx context.Context, request RunRequest) (RunResult, error)
}

type RunRequest struct {
	APIID   string
	Message string
}

type RunResult struct {
	ID       string
	ThreadID string
	// Body is the whole decoded response, including messages.
	Body map[string]any
}
