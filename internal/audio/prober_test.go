package audio

import (
	"testing"
)

const sampleProbe = `{
	"streams": [
		{
			"index": 0,
			"codec_name": "mp3",
			"codec_type": "audio",
			"sample_rate": "44100",
			"channels": 2,
			"duration": "3599.921633"
		}
	],
	"format": {
		"filename": "/shows/tmp/2024-01-08/BSR-24-01-08-22-00.mp3",
		"format_name": "mp3",
		"duration": "3599.921633",
		"size": "57598746"
	}
}`

func TestParseResult(t *testing.T) {
	result, err := parseResult([]byte(sampleProbe))
	if err != nil {
		t.Fatalf("parseResult: %v", err)
	}

	if got := result.AudioStreamCount(); got != 1 {
		t.Errorf("AudioStreamCount() = %d, want 1", got)
	}
	if got := result.DurationSeconds(); got < 3599 || got > 3600 {
		t.Errorf("DurationSeconds() = %f, want ~3599.92", got)
	}
	if result.Format.FormatName != "mp3" {
		t.Errorf("FormatName = %q, want mp3", result.Format.FormatName)
	}
}

func TestParseResult_Malformed(t *testing.T) {
	if _, err := parseResult([]byte("ffprobe exploded")); err == nil {
		t.Error("expected error for non-JSON output")
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		result  Result
		wantErr bool
	}{
		{
			name: "playable audio",
			result: Result{
				Streams: []Stream{{CodecType: "audio"}},
				Format:  Format{Duration: "3600.0"},
			},
			wantErr: false,
		},
		{
			name: "no audio stream",
			result: Result{
				Streams: []Stream{{CodecType: "video"}},
				Format:  Format{Duration: "3600.0"},
			},
			wantErr: true,
		},
		{
			name: "zero duration",
			result: Result{
				Streams: []Stream{{CodecType: "audio"}},
				Format:  Format{Duration: "0"},
			},
			wantErr: true,
		},
		{
			name: "missing duration",
			result: Result{
				Streams: []Stream{{CodecType: "audio"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify(tt.result)
			if tt.wantErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
