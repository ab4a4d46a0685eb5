package wavmeta

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the hashing pool width used when none is configured.
const DefaultWorkers = 4

// DuplicateGroup is a set of files sharing one fingerprint. Paths follow
// discovery order; the first entry is the keeper.
type DuplicateGroup struct {
	Fingerprint Fingerprint
	Size        int64
	Paths       []string
}

// Keeper returns the path that move/delete operations keep.
func (g DuplicateGroup) Keeper() string {
	if len(g.Paths) == 0 {
		return ""
	}

	return g.Paths[0]
}

// Duplicates returns every path but the keeper.
func (g DuplicateGroup) Duplicates() []string {
	if len(g.Paths) < 2 {
		return nil
	}

	return g.Paths[1:]
}

// GroupOptions configures FindDuplicates.
type GroupOptions struct {
	Mode HashMode
	// MinSize excludes files smaller than this many bytes.
	MinSize int64
	// Workers bounds the number of files hashed at once.
	Workers int
	// AudioExtensions restricts HashAudioPayload to these extensions;
	// other files are hashed in full. Defaults to .wav and .wave.
	AudioExtensions []string
	Logger          *slog.Logger
}

type candidate struct {
	path string
	size int64
	fp   Fingerprint
	ok   bool
}

// FindDuplicates groups paths by size and then by fingerprint.
//
// Only files that share their size with another file are hashed. Files
// that cannot be read are returned as failures and left out of every
// group. Groups are ordered by the position of their keeper in paths. The
// error is non-nil only when ctx is cancelled.
func FindDuplicates(ctx context.Context, paths []string, opts GroupOptions) ([]DuplicateGroup, []FileError, error) {
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	audioExts := opts.AudioExtensions
	if len(audioExts) == 0 {
		audioExts = []string{".wav", ".wave"}
	}

	var failures []FileError

	bySize := make(map[int64][]int)
	sized := make([]candidate, 0, len(paths))

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			failures = append(failures, FileError{Path: path, Err: err})
			continue
		}

		if info.Size() < opts.MinSize {
			continue
		}

		bySize[info.Size()] = append(bySize[info.Size()], len(sized))
		sized = append(sized, candidate{path: path, size: info.Size()})
	}

	var candidates []*candidate

	for i := range sized {
		if len(bySize[sized[i].size]) > 1 {
			candidates = append(candidates, &sized[i])
		}
	}

	logger.Debug("hashing duplicate candidates",
		slog.Int("files", len(sized)),
		slog.Int("candidates", len(candidates)),
		slog.String("mode", opts.Mode.String()),
	)

	errs := make([]error, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, c := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			mode := opts.Mode
			if mode == HashAudioPayload && !HasExtension(c.path, audioExts) {
				mode = HashFull
			}

			fp, err := FingerprintFile(c.path, mode)
			if err != nil && mode == HashAudioPayload && errors.Is(err, ErrUnparseable) {
				logger.Debug("falling back to full-file hash", slog.String("path", c.path), slog.Any("reason", err))
				fp, err = FingerprintFile(c.path, HashFull)
			}

			if err != nil {
				errs[i] = err
				return nil
			}

			c.fp = fp
			c.ok = true

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, failures, err
	}

	groups := make(map[Fingerprint]*DuplicateGroup)
	order := make(map[Fingerprint]int)

	for i, c := range candidates {
		if errs[i] != nil {
			logger.Warn("hash failed", slog.String("path", c.path), slog.Any("error", errs[i]))
			failures = append(failures, FileError{Path: c.path, Err: errs[i]})

			continue
		}

		group, seen := groups[c.fp]
		if !seen {
			group = &DuplicateGroup{Fingerprint: c.fp, Size: c.size}
			groups[c.fp] = group
			order[c.fp] = i
		}

		group.Paths = append(group.Paths, c.path)
	}

	result := make([]DuplicateGroup, 0, len(groups))

	for _, group := range groups {
		if len(group.Paths) > 1 {
			result = append(result, *group)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return order[result[i].Fingerprint] < order[result[j].Fingerprint]
	})

	return result, failures, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
