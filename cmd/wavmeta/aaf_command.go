package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cwbudde/wavmeta"
	"github.com/cwbudde/wavmeta/internal/aafxml"
	"github.com/cwbudde/wavmeta/internal/fileutil"
	"github.com/cwbudde/wavmeta/internal/ucs"
)

const defaultAAFOutput = "./aaf_output"

var aafExtensions = []string{".wav", ".wave"}

func newAAFCommand(ctx *commandContext) *cobra.Command {
	var (
		single  bool
		ucsPath string
		fps     int
		workers int
	)

	cmd := &cobra.Command{
		Use:   "aaf [input] [output]",
		Short: "Write simplified AAF XML files for WAV files",
		Long: "Processes every WAV below input (default: current directory) into output\n" +
			"(default: ./aaf_output). With --file, input and output name single files.",
		Args: cobra.MaximumNArgs(2),
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
			if fps <= 0 {
				fps = cfg.AAF.FPS
			}
			if workers <= 0 {
				workers = cfg.Scan.Workers
			}

			input := "."
			if len(args) > 0 {
				input = args[0]
			}
			output := ""
			if len(args) > 1 {
				output = args[1]
			}

			w := &aafWriter{out: cmd.OutOrStdout(), table: table, fps: fps, logger: logger}
			if single {
				return w.file(input, output)
			}

			if output == "" {
				output = defaultAAFOutput
			}
			paths, err := wavmeta.WalkFiles(input, aafExtensions, func(fe wavmeta.FileError) {
				logger.Warn("skipping unreadable path", slog.String("path", fe.Path), slog.Any("error", fe.Err))
			})
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no WAV files found in %s", input)
			}
			if err := os.MkdirAll(output, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			fmt.Fprintf(w.out, "Found %d WAV file(s) to process...\n", len(paths))

			records, failures, err := wavmeta.ExtractAll(cmd.Context(), paths, wavmeta.ExtractOptions{
				Workers: workers,
				Logger:  logger,
			})
			if err != nil {
				return err
			}
			for _, fe := range failures {
				fmt.Fprintf(w.out, "  Skipping %s: %v\n", filepath.Base(fe.Path), fe.Err)
			}

			reserved := make(map[string]bool)
			processed := 0
			for _, rec := range records {
				dest := fileutil.UniquePath(filepath.Join(output, aafxml.OutputName(rec.Path)), func(p string) bool {
					return reserved[p]
				})
				reserved[dest] = true

				if err := w.write(rec, dest); err != nil {
					fmt.Fprintf(w.out, "  Error processing %s: %v\n", rec.Name, err)
					continue
				}
				processed++
			}

			fmt.Fprintf(w.out, "\nCompleted! Processed %d file(s)\n", processed)
			fmt.Fprintf(w.out, "Output files saved to: %s\n", output)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&single, "file", "f", false, "Process a single file instead of a directory")
	cmd.Flags().StringVar(&ucsPath, "ucs", "", "UCS CSV used for categorization")
	cmd.Flags().IntVar(&fps, "fps", 0, "Duration timecode frame rate (default from config)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel extraction workers (default from config)")

	return cmd
}

type aafWriter struct {
	out    io.Writer
	table  *ucs.Table
	fps    int
	logger *slog.Logger
}

func (w *aafWriter) file(input, output string) error {
	rec, err := wavmeta.Extract(input)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	switch info, err := os.Stat(output); {
	case output == "":
		output = filepath.Join(filepath.Dir(input), aafxml.OutputName(input))
	case err == nil && info.IsDir():
		output = filepath.Join(output, aafxml.OutputName(input))
	}

	return w.write(rec, output)
}

func (w *aafWriter) write(rec *wavmeta.Record, dest string) error {
	opts := aafxml.Options{FPS: w.fps}

	description := ""
	if rec.Bext != nil {
		description = rec.Bext.Description
	}
	if res, ok := w.table.Categorize(rec.Name, description); ok {
		opts.Categories = &res
		fmt.Fprintf(w.out, "  UCS Category: %s > %s (%.1f)\n", res.Primary.Category.Category, res.Primary.SubCategory, res.Primary.Score)
	}

	if err := aafxml.WriteFile(dest, aafxml.Build(rec, opts)); err != nil {
		return err
	}

	w.logger.Debug("aaf written", slog.String("source", rec.Path), slog.String("dest", dest))
	fmt.Fprintf(w.out, "  Created: %s\n", filepath.Base(dest))
	return nil
}
