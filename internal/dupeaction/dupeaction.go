// Package dupeaction reports duplicate groups and resolves them by moving
// or deleting every member but the keeper.
package dupeaction

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"

	"github.com/cwbudde/wavmeta"
	"github.com/cwbudde/wavmeta/internal/fileutil"
)

// LockFileName is created in the scan root while files are being moved or
// deleted.
const LockFileName = ".wavmeta.lock"

var (
	// ErrConflictingActions is returned when both a move target and delete
	// are requested.
	ErrConflictingActions = errors.New("cannot move and delete duplicates at the same time")
	// ErrLocked is returned when another run holds the root lock.
	ErrLocked = errors.New("another duplicate run is modifying this root")
)

// WriteCSV writes a hash,size,path report with one row per group member.
func WriteCSV(w io.Writer, groups []wavmeta.DuplicateGroup) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"hash", "size", "path"}); err != nil {
		return err
	}

	for _, g := range groups {
		hash := g.Fingerprint.String()
		size := strconv.FormatInt(g.Size, 10)
		for _, p := range g.Paths {
			if err := cw.Write([]string{hash, size, p}); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the report to path atomically.
func WriteCSVFile(path string, groups []wavmeta.DuplicateGroup) error {
	return fileutil.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		return WriteCSV(w, groups)
	})
}

// Kind is the action applied to a duplicate.
type Kind string

const (
	Move   Kind = "move"
	Delete Kind = "delete"
)

// Action is one planned or performed operation.
type Action struct {
	Kind Kind
	Path string
	// Dest is the move destination; empty for deletes.
	Dest string
}

// Options configures Apply. Exactly one of MoveTo and Delete must be set.
type Options struct {
	MoveTo string
	Delete bool
	DryRun bool
	Logger *slog.Logger
}

// Result lists what Apply did, or would do in a dry run.
type Result struct {
	Actions  []Action
	Failures []wavmeta.FileError
}

// Apply moves or deletes every duplicate of every group, keeping the first
// path of each. Per-file failures are collected and processing continues.
// Outside a dry run, a lock file in root keeps concurrent runs apart.
func Apply(ctx context.Context, root string, groups []wavmeta.DuplicateGroup, opts Options) (Result, error) {
	var res Result

	if opts.MoveTo != "" && opts.Delete {
		return res, ErrConflictingActions
	}
	if opts.MoveTo == "" && !opts.Delete {
		return res, nil
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if !opts.DryRun {
		lock := flock.New(filepath.Join(root, LockFileName))
		ok, err := lock.TryLock()
		if err != nil {
			return res, fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return res, ErrLocked
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				logger.Warn("failed to release duplicate lock", slog.Any("error", err))
			}
		}()

		if opts.MoveTo != "" {
			if err := os.MkdirAll(opts.MoveTo, 0o755); err != nil {
				return res, fmt.Errorf("create move-to directory: %w", err)
			}
		}
	}

	reserved := make(map[string]bool)
	taken := func(p string) bool { return reserved[p] }

	for _, g := range groups {
		for _, dup := range g.Duplicates() {
			if err := ctx.Err(); err != nil {
				return res, err
			}

			action := Action{Kind: Delete, Path: dup}
			if opts.MoveTo != "" {
				action.Kind = Move
				action.Dest = fileutil.UniquePath(filepath.Join(opts.MoveTo, filepath.Base(dup)), taken)
				reserved[action.Dest] = true
			}

			if opts.DryRun {
				logger.Info("dry run", slog.String("action", string(action.Kind)), slog.String("path", dup))
				res.Actions = append(res.Actions, action)
				continue
			}

			var err error
			if action.Kind == Move {
				err = fileutil.MoveFile(dup, action.Dest)
			} else {
				err = os.Remove(dup)
			}
			if err != nil {
				logger.Warn("duplicate action failed",
					slog.String("action", string(action.Kind)),
					slog.String("path", dup),
					slog.Any("error", err),
				)
				res.Failures = append(res.Failures, wavmeta.FileError{Path: dup, Err: err})
				continue
			}

			logger.Debug("duplicate resolved",
				slog.String("action", string(action.Kind)),
				slog.String("path", dup),
				slog.String("dest", action.Dest),
			)
			res.Actions = append(res.Actions, action)
		}
	}

	return res, nil
}
