package audio

import (
	"strings"
	"testing"
)

func TestConcatList(t *testing.T) {
	paths := []string{
		"/shows/tmp/2024-01-08/BSR-24-01-08-22-00.mp3",
		"/shows/tmp/2024-01-08/BSR-24-01-08-23-00.mp3",
		"/shows/tmp/2024-01-08/BSR-24-01-09-00-00.mp3",
	}

	got := concatList(paths)

	want := "file '/shows/tmp/2024-01-08/BSR-24-01-08-22-00.mp3'\n" +
		"file '/shows/tmp/2024-01-08/BSR-24-01-08-23-00.mp3'\n" +
		"file '/shows/tmp/2024-01-08/BSR-24-01-09-00-00.mp3'\n"
	if got != want {
		t.Errorf("concatList() =\n%s\nwant\n%s", got, want)
	}
}

func TestConcatList_EscapesQuotes(t *testing.T) {
	got := concatList([]string{"/shows/it's here.mp3"})

	want := "file '/shows/it'\\''s here.mp3'\n"
	if got != want {
		t.Errorf("concatList() = %q, want %q", got, want)
	}
}

func TestConcatArgs(t *testing.T) {
	tests := []struct {
		name       string
		maxSeconds int
		wantCap    bool
	}{
		{name: "with duration cap", maxSeconds: 9000, wantCap: true},
		{name: "uncapped", maxSeconds: 0, wantCap: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := concatArgs("/tmp/file_list.txt", "/shows/2024-01-08.mp3", tt.maxSeconds)
			joined := strings.Join(args, " ")

			if !strings.Contains(joined, "-f concat -safe 0 -i /tmp/file_list.txt") {
				t.Errorf("missing concat demuxer input: %s", joined)
			}
			if !strings.Contains(joined, "-c copy") {
				t.Errorf("merge must stream-copy, not re-encode: %s", joined)
			}
			if gotCap := strings.Contains(joined, "-t 9000"); gotCap != tt.wantCap {
				t.Errorf("duration cap present = %v, want %v: %s", gotCap, tt.wantCap, joined)
			}
			if args[len(args)-1] != "/shows/2024-01-08.mp3" {
				t.Errorf("output path must come last: %s", joined)
			}
		})
	}
}
