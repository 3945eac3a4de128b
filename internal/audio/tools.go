package audio

import (
	"fmt"
	"os/exec"
	"strings"
)

// CheckTools verifies the external ffmpeg and ffprobe binaries are
// runnable before a batch starts, so a missing tool fails the run
// upfront instead of after hours of downloading.
//
// Empty paths check the default binary names on PATH.
func CheckTools(ffmpegPath, ffprobePath string) error {
	checks := []struct {
		name   string
		binary string
	}{
		{"ffmpeg", ffmpegPath},
		{"ffprobe", ffprobePath},
	}

	var missing []string
	for _, check := range checks {
		binary := strings.TrimSpace(check.binary)
		if binary == "" {
			binary = check.name
		}
		if _, err := exec.LookPath(binary); err != nil {
			missing = append(missing, fmt.Sprintf("%s (%q)", check.name, binary))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("required tools not found: %s", strings.Join(missing, ", "))
	}
	return nil
}
