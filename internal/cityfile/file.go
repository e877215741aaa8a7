// Package cityfile loads and writes save files on disk for the CLI and the
// HTTP service, logging what the decoder tolerated.
package cityfile

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/samcharles93/sc2k/internal/logger"
	"github.com/samcharles93/sc2k/pkg/sc2"
)

// File is a decoded save together with where it came from.
type File struct {
	Path string
	Size int64
	City *sc2.City
}

// Load decodes the save at path and logs the decode report through the
// logger carried by ctx.
func Load(ctx context.Context, path string) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	city, size, err := sc2.LoadSize(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	log := logger.FromContext(ctx).With("file", path)
	LogReport(log, city)
	log.Debug("decoded save", "bytes", size, "chunks", city.Container.Len(), "name", city.Name)
	return &File{Path: path, Size: int64(size), City: city}, nil
}

// LogReport writes one record per tolerated irregularity.
func LogReport(log logger.Logger, city *sc2.City) {
	r := city.Report
	if !city.Container.Header.Valid() {
		h := city.Container.Header
		log.Warn("unexpected container markers", "file_type", fmt.Sprintf("%#08x", h.FileType), "marker", fmt.Sprintf("%#08x", h.Marker))
	}
	for _, t := range r.Unknown {
		log.Info("unknown chunk kept opaque", "tag", t.String())
	}
	for _, t := range sortedTags(r.Partial) {
		log.Warn("grid layer shorter than map", "tag", t.String(), "tiles", r.Partial[t], "want", sc2.TileCount)
	}
	for _, t := range sortedTags(r.Excess) {
		log.Warn("grid layer longer than map", "tag", t.String(), "ignored", r.Excess[t])
	}
	for _, t := range r.Replaced {
		log.Warn("duplicate chunk replaced earlier payload", "tag", t.String())
	}
}

func sortedTags(m map[sc2.Tag]int) []sc2.Tag {
	out := make([]sc2.Tag, 0, len(m))
	for t := range m {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// LoadAll decodes paths with up to workers concurrent loads. Results keep
// the order of paths; a failed path leaves a nil entry and its error is
// returned joined with the others.
func LoadAll(ctx context.Context, paths []string, workers int) ([]*File, error) {
	if workers < 1 {
		workers = 1
	}
	files := make([]*File, len(paths))
	errs := make([]error, len(paths))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range min(workers, len(paths)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				files[i], errs[i] = Load(ctx, paths[i])
			}
		}()
	}

feed:
	for i := range paths {
		select {
		case jobs <- i:
		case <-ctx.Done():
			for j := i; j < len(paths); j++ {
				errs[j] = ctx.Err()
			}
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return files, joinErrors(errs)
}

func joinErrors(errs []error) error {
	var kept []error
	for _, err := range errs {
		if err != nil {
			kept = append(kept, err)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return &MultiError{Errs: kept}
}

// MultiError collects per-file failures from LoadAll.
type MultiError struct {
	Errs []error
}

func (m *MultiError) Error() string {
	return fmt.Sprintf("%d files failed; first: %v", len(m.Errs), m.Errs[0])
}

func (m *MultiError) Unwrap() []error {
	return m.Errs
}

// Convert reads src and writes it to dst with mode, returning the size of
// the written file.
func Convert(ctx context.Context, src, dst string, mode sc2.Mode) (int64, error) {
	f, err := Load(ctx, src)
	if err != nil {
		return 0, err
	}
	size, err := sc2.WriteFile(dst, f.City, mode)
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", dst, err)
	}
	logger.FromContext(ctx).Info("converted save", "src", src, "dst", dst, "mode", mode.String(), "bytes", size)
	return size, nil
}
