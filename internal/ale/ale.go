// Package ale writes Avid Log Exchange files from extracted WAV metadata.
//
// An ALE file has three sections: a Heading block of key/value pairs, a
// Column line naming every field and a Data block with one tab separated
// row per clip.
package ale

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/cwbudde/wavmeta"
	"github.com/cwbudde/wavmeta/internal/fileutil"
	"github.com/cwbudde/wavmeta/internal/ucs"
)

// RequiredColumns lead every Column line, in this order.
var RequiredColumns = []string{"Name", "Tape", "Start", "End", "Tracks", "AudioFormat"}

// DefaultExcluded lists the record fields left out of ALE output.
var DefaultExcluded = []string{"Origination Date", "Origination Time", "Sample Width", "Duration", "Channels"}

var aiffExtensions = []string{".aif", ".aiff", ".aifc"}

// Header holds the Heading block values.
type Header struct {
	VideoFormat string
	AudioFormat string
	FPS         int
}

// DefaultHeader returns the heading used by Avid for 1080p 24fps projects.
func DefaultHeader() Header {
	return Header{VideoFormat: "1080", AudioFormat: "48khz", FPS: 24}
}

// Row maps column names to cell values.
type Row map[string]string

// RowFromRecord builds the ALE row of one clip. End is the clip duration,
// rounded to hundredths of a second, as a timecode at fps. When table is
// non-nil the UCS Category and Subcategory of the file name are added.
func RowFromRecord(rec *wavmeta.Record, fps int, table *ucs.Table) Row {
	row := Row(rec.Map())

	format := "WAV"
	if wavmeta.HasExtension(rec.Name, aiffExtensions) {
		format = "AIFF"
	}

	row["Name"] = rec.Name
	row["Tape"] = ""
	row["Start"] = wavmeta.Timecode(0, fps)
	row["End"] = wavmeta.Timecode(rec.Audio.Duration.Round(10*time.Millisecond), fps)
	row["Tracks"] = wavmeta.Tracks(rec.Audio.Channels())
	row["AudioFormat"] = format

	if table != nil {
		c, _ := table.Lookup(rec.Name)
		row["Category"] = c.Category
		row["Subcategory"] = c.SubCategory
	}

	return row
}

// Columns returns the required columns followed by every other column
// present in rows, sorted, minus the excluded ones.
func Columns(rows []Row, excluded []string) []string {
	skip := make(map[string]bool, len(excluded)+len(RequiredColumns))
	for _, c := range excluded {
		skip[c] = true
	}
	for _, c := range RequiredColumns {
		skip[c] = true
	}

	extra := make(map[string]struct{})
	for _, row := range rows {
		for name := range row {
			if !skip[name] {
				extra[name] = struct{}{}
			}
		}
	}

	return append(slices.Clone(RequiredColumns), slices.Sorted(maps.Keys(extra))...)
}

var cellCleaner = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

// Write renders header, columns and rows. Rows whose cells are all blank
// are skipped. It returns the number of data rows written.
func Write(w io.Writer, header Header, rows []Row, excluded []string) (int, error) {
	columns := Columns(rows, excluded)

	var b strings.Builder
	b.WriteString("Heading\n")
	b.WriteString("FIELD_DELIM\tTABS\n")
	fmt.Fprintf(&b, "VIDEO_FORMAT\t%s\n", header.VideoFormat)
	fmt.Fprintf(&b, "AUDIO_FORMAT\t%s\n", header.AudioFormat)
	fmt.Fprintf(&b, "FPS\t%d\n", header.FPS)
	b.WriteString("\nColumn\n")
	b.WriteString(strings.Join(columns, "\t"))
	b.WriteString("\n\nData\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return 0, err
	}

	written := 0
	cells := make([]string, len(columns))

	for _, row := range rows {
		blank := true
		for i, col := range columns {
			cells[i] = strings.TrimSpace(cellCleaner.Replace(row[col]))
			if cells[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}

		if _, err := io.WriteString(w, strings.Join(cells, "\t")+"\n"); err != nil {
			return written, err
		}
		written++
	}

	return written, nil
}

// WriteFile writes an ALE file atomically.
func WriteFile(path string, header Header, rows []Row, excluded []string) (int, error) {
	var written int
	err := fileutil.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		var err error
		written, err = Write(w, header, rows, excluded)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("write ale %s: %w", path, err)
	}
	return written, nil
}

// SkipLogPath returns the skip log location for an ALE output path.
func SkipLogPath(out string) string {
	return out + ".skip.log"
}

// WriteSkipLog writes one "path<TAB>reason" line per failure. Nothing is
// written, and any stale log is removed, when failures is empty.
func WriteSkipLog(path string, failures []wavmeta.FileError) error {
	if len(failures) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale skip log: %w", err)
		}
		return nil
	}

	return fileutil.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		for _, f := range failures {
			reason := cellCleaner.Replace(f.Err.Error())
			if _, err := fmt.Fprintf(w, "%s\t%s\n", f.Path, reason); err != nil {
				return err
			}
		}
		return nil
	})
}
