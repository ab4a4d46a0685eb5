package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cwbudde/wavmeta"
	"github.com/cwbudde/wavmeta/internal/dupeaction"
)

const defaultReportLimit = 20

func newDupesCommand(ctx *commandContext) *cobra.Command {
	var (
		extensions  []string
		minSize     int64
		audioOnly   bool
		workers     int
		csvPath     string
		moveTo      string
		deleteDupes bool
		dryRun      bool
		reportLimit int
	)

	cmd := &cobra.Command{
		Use:   "dupes <root>",
		Short: "Find duplicate files by size and content hash",
		Long: "Groups files below root by size, then by SHA-256. With --audio-only, WAV files\n" +
			"are compared by their audio payload so metadata-only differences are ignored.\n" +
			"--move-to or --delete keep the first file of each group and act on the rest.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if moveTo != "" && deleteDupes {
				return dupeaction.ErrConflictingActions
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if !flags.Changed("extensions") {
				extensions = cfg.Scan.Extensions
			}
			if !flags.Changed("min-size") {
				minSize = cfg.Scan.MinSize
			}
			if !flags.Changed("audio-only") {
				audioOnly = cfg.Scan.AudioOnly
			}
			if !flags.Changed("workers") {
				workers = cfg.Scan.Workers
			}

			root := args[0]
			paths, err := wavmeta.WalkFiles(root, extensions, func(fe wavmeta.FileError) {
				logger.Warn("skipping unreadable path", slog.String("path", fe.Path), slog.Any("error", fe.Err))
			})
			if err != nil {
				return err
			}
			paths = withoutLockFile(paths)

			mode := wavmeta.HashFull
			if audioOnly {
				mode = wavmeta.HashAudioPayload
			}

			groups, failures, err := wavmeta.FindDuplicates(cmd.Context(), paths, wavmeta.GroupOptions{
				Mode:    mode,
				MinSize: minSize,
				Workers: workers,
				Logger:  logger,
			})
			if err != nil {
				return err
			}
			if len(failures) > 0 {
				logger.Info("some files could not be hashed", slog.Int("count", len(failures)))
			}

			out := cmd.OutOrStdout()
			if len(groups) == 0 {
				fmt.Fprintln(out, "No duplicates found.")
				return nil
			}

			printGroups(out, groups, reportLimit)

			if csvPath != "" {
				if err := dupeaction.WriteCSVFile(csvPath, groups); err != nil {
					return fmt.Errorf("write csv report: %w", err)
				}
				fmt.Fprintln(out, "Wrote CSV report to", csvPath)
			}

			res, err := dupeaction.Apply(cmd.Context(), root, groups, dupeaction.Options{
				MoveTo: moveTo,
				Delete: deleteDupes,
				DryRun: dryRun,
				Logger: logger,
			})
			if err != nil {
				return err
			}
			printActions(out, res, dryRun)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&extensions, "extensions", "e", nil, "Limit to these extensions, e.g. .wav,.aif (default from config)")
	cmd.Flags().Int64Var(&minSize, "min-size", 1, "Minimum file size in bytes to consider")
	cmd.Flags().BoolVar(&audioOnly, "audio-only", false, "Hash only the WAV data chunk when possible")
	cmd.Flags().IntVar(&workers, "workers", wavmeta.DefaultWorkers, "Parallel hashing workers")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write a hash,size,path CSV report to this file")
	cmd.Flags().StringVar(&moveTo, "move-to", "", "Move duplicates (keeping the first) into this folder")
	cmd.Flags().BoolVar(&deleteDupes, "delete", false, "Delete duplicates (keeping the first)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only report what --move-to or --delete would do")
	cmd.Flags().IntVar(&reportLimit, "report-limit", defaultReportLimit, "Show up to N files per group")

	return cmd
}

func withoutLockFile(paths []string) []string {
	out := paths[:0]
	for _, p := range paths {
		if filepath.Base(p) != dupeaction.LockFileName {
			out = append(out, p)
		}
	}
	return out
}

func printGroups(out io.Writer, groups []wavmeta.DuplicateGroup, limit int) {
	fmt.Fprintf(out, "Found %d duplicate groups\n", len(groups))

	if isTerminal(out) {
		var rows [][]string
		for i, g := range groups {
			for j, p := range limitPaths(g.Paths, limit) {
				group, size := "", ""
				if j == 0 {
					group = strconv.Itoa(i + 1)
					size = humanize.IBytes(uint64(g.Size))
				}
				rows = append(rows, []string{group, size, p})
			}
			if extra := len(g.Paths) - limit; limit > 0 && extra > 0 {
				rows = append(rows, []string{"", "", fmt.Sprintf("... and %d more", extra)})
			}
		}
		fmt.Fprintln(out, renderTable([]string{"Group", "Size", "Path"}, rows, []columnAlignment{alignRight, alignRight, alignLeft}))
		return
	}

	for _, g := range groups {
		fmt.Fprintln(out, strings.Repeat("-", 60))
		fmt.Fprintln(out, "Group hash:", g.Fingerprint)
		fmt.Fprintf(out, "Count: %d Size: %d (%s)\n", len(g.Paths), g.Size, humanize.IBytes(uint64(g.Size)))
		for _, p := range limitPaths(g.Paths, limit) {
			fmt.Fprintln(out, " ", p)
		}
		if extra := len(g.Paths) - limit; limit > 0 && extra > 0 {
			fmt.Fprintln(out, "  ... and", extra, "more")
		}
	}
}

func limitPaths(paths []string, limit int) []string {
	if limit > 0 && len(paths) > limit {
		return paths[:limit]
	}
	return paths
}

func printActions(out io.Writer, res dupeaction.Result, dryRun bool) {
	moved, deleted := 0, 0
	for _, a := range res.Actions {
		if dryRun {
			if a.Kind == dupeaction.Move {
				fmt.Fprintf(out, "[DRY] Would move %s -> %s\n", a.Path, a.Dest)
			} else {
				fmt.Fprintf(out, "[DRY] Would delete %s\n", a.Path)
			}
			continue
		}
		if a.Kind == dupeaction.Move {
			moved++
		} else {
			deleted++
		}
	}

	for _, fe := range res.Failures {
		fmt.Fprintf(out, "Error handling duplicate %s: %v\n", fe.Path, fe.Err)
	}
	if moved > 0 {
		fmt.Fprintf(out, "Moved %d duplicate(s)\n", moved)
	}
	if deleted > 0 {
		fmt.Fprintf(out, "Deleted %d duplicate(s)\n", deleted)
	}
}
