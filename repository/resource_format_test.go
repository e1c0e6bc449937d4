package repository

import (
	"path/filepath"
	"testing"
)

func TestParseResourceFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    ResourceFormat
		wantErr bool
	}{
		{raw: "", want: ResourceFormatJSON},
		{raw: " JSON ", want: ResourceFormatJSON},
		{raw: "yml", want: ResourceFormatYAML},
		{raw: "yaml", want: ResourceFormatYAML},
		{raw: "toml", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseResourceFormat(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseResourceFormat(%q) expected error", tt.raw)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ParseResourceFormat(%q) = %q, %v; want %q", tt.raw, got, err, tt.want)
		}
	}
}

func TestRecordFilePathUsesDirectoryName(t *testing.T) {
	t.Parallel()

	dir := filepath.Join("functions", "greeter")
	if got, want := RecordFilePath(dir, ResourceFormatYAML), filepath.Join(dir, "greeter.yaml"); got != want {
		t.Fatalf("RecordFilePath() = %q, want %q", got, want)
	}
	if format, ok := FormatForExtension(".YML"); !ok || format != ResourceFormatYAML {
		t.Fatalf("expected .YML to map to yaml, got %q", format)
	}
	if _, ok := FormatForExtension(".txt"); ok {
		t.Fatal("expected .txt to be rejected")
	}
}
