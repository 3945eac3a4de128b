package download

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/djb-downloader/internal/audio"
)

// VerifyIssue reports one archive file that failed verification.
type VerifyIssue struct {
	Path string
	Err  error
}

// VerifyArchive probes every merged recording under outputDir and
// reports the files that are not playable audio. It returns the issues
// sorted by path and the number of files checked.
//
// Probing is read-only, so unlike downloads it may run concurrently;
// limit caps the number of parallel ffprobe processes.
func VerifyArchive(ctx context.Context, inspector Inspector, outputDir string, limit int) ([]VerifyIssue, int, error) {
	paths, err := filepath.Glob(filepath.Join(outputDir, "*.mp3"))
	if err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 4
	}

	var (
		mu     sync.Mutex
		issues []VerifyIssue
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			result, err := inspector.Inspect(ctx, path)
			if err == nil {
				err = audio.Verify(result)
			}
			if err != nil {
				mu.Lock()
				issues = append(issues, VerifyIssue{Path: path, Err: err})
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	sort.Slice(issues, func(i, j int) bool { return issues[i].Path < issues[j].Path })
	return issues, len(paths), nil
}
