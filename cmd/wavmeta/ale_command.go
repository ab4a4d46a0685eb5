package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwbudde/wavmeta"
	"github.com/cwbudde/wavmeta/internal/ale"
)

type aleBatch struct {
	out   string
	paths []string
}

func newALECommand(ctx *commandContext) *cobra.Command {
	var (
		output  string
		ucsPath string
		fps     int
		workers int
	)

	cmd := &cobra.Command{
		Use:   "ale <dir>",
		Short: "Write Avid Log Exchange files for a directory tree",
		Long: "Extracts the metadata of every WAV below dir and writes one ALE per directory.\n" +
			"When --output names a .ale file, all clips go into that single file instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			table, err := ctx.loadUCS(ucsPath)
			if err != nil {
				return err
			}

			header := ale.Header{VideoFormat: cfg.ALE.VideoFormat, AudioFormat: cfg.ALE.AudioFormat, FPS: cfg.ALE.FPS}
			if fps > 0 {
				header.FPS = fps
			}
			if workers <= 0 {
				workers = cfg.Scan.Workers
			}

			root := args[0]
			var walkFailures []wavmeta.FileError
			paths, err := wavmeta.WalkFiles(root, cfg.Scan.Extensions, func(fe wavmeta.FileError) {
				logger.Warn("skipping unreadable path", slog.String("path", fe.Path), slog.Any("error", fe.Err))
				walkFailures = append(walkFailures, fe)
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(paths) == 0 {
				fmt.Fprintf(out, "No WAV files found in %s\n", root)
				return nil
			}

			batches, err := planALEBatches(root, output, paths)
			if err != nil {
				return err
			}

			for i, batch := range batches {
				records, failures, err := wavmeta.ExtractAll(cmd.Context(), batch.paths, wavmeta.ExtractOptions{
					Workers: workers,
					Logger:  logger,
				})
				if err != nil {
					return err
				}
				if i == 0 {
					failures = append(walkFailures, failures...)
				}

				rows := make([]ale.Row, 0, len(records))
				for _, rec := range records {
					rows = append(rows, ale.RowFromRecord(rec, header.FPS, table))
				}

				written, err := ale.WriteFile(batch.out, header, rows, cfg.ALE.Excluded)
				if err != nil {
					return err
				}
				if err := ale.WriteSkipLog(ale.SkipLogPath(batch.out), failures); err != nil {
					return err
				}

				fmt.Fprintf(out, "Wrote %d clips to %s", written, batch.out)
				if len(failures) > 0 {
					fmt.Fprintf(out, " (%d skipped, see %s)", len(failures), ale.SkipLogPath(batch.out))
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output .ale file, or directory for per-folder ALEs (default: dir)")
	cmd.Flags().StringVar(&ucsPath, "ucs", "", "UCS CSV used to fill Category and Subcategory")
	cmd.Flags().IntVar(&fps, "fps", 0, "Timecode frame rate (default from config)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel extraction workers (default from config)")

	return cmd
}

// planALEBatches groups paths by directory. A .ale output collects every
// path into one batch; otherwise each directory gets <root>_<rel>.ale in the
// output directory.
func planALEBatches(root, output string, paths []string) ([]aleBatch, error) {
	if strings.EqualFold(filepath.Ext(output), ".ale") {
		if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
		return []aleBatch{{out: output, paths: paths}}, nil
	}

	outDir := output
	if outDir == "" {
		outDir = root
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	rootName := filepath.Base(filepath.Clean(root))

	var batches []aleBatch
	index := make(map[string]int)
	for _, p := range paths {
		dir := filepath.Dir(p)
		i, ok := index[dir]
		if !ok {
			name := rootName
			if rel, err := filepath.Rel(root, dir); err == nil && rel != "." {
				name += "_" + strings.ReplaceAll(rel, string(filepath.Separator), "_")
			}
			i = len(batches)
			index[dir] = i
			batches = append(batches, aleBatch{out: filepath.Join(outDir, name+".ale")})
		}
		batches[i].paths = append(batches[i].paths, p)
	}
	return batches, nil
}
