package wavmeta

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

var aiffExtensions = []string{".aif", ".aiff", ".aifc"}

// Record is the merged metadata of one audio file.
type Record struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time

	Audio AudioInfo
	// Bext is nil when the file has no usable bext chunk.
	Bext *BextRecord
	Info InfoMap
	XML  XMLTagMap

	Warnings []Warning
}

// Field is one named value of a flattened Record.
type Field struct {
	Name  string
	Value string
}

// Extract reads the file at path and decodes its metadata.
//
// WAV files get audio info plus bext, INFO and ebuCore data. AIFF files
// only get audio info. Any other file fails with ErrNotRiffWave.
func Extract(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if HasExtension(path, aiffExtensions) {
		info, err := ReadAIFFInfo(f)
		if err != nil {
			return nil, err
		}

		return &Record{
			Path:    path,
			Name:    filepath.Base(path),
			Size:    stat.Size(),
			ModTime: stat.ModTime(),
			Audio:   info,
			Info:    InfoMap{},
			XML:     XMLTagMap{},
		}, nil
	}

	data := make([]byte, stat.Size())
	if _, err := f.ReadAt(data, 0); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	rec, err := ExtractBytes(filepath.Base(path), data)
	if err != nil {
		return nil, err
	}

	rec.Path = path
	rec.ModTime = stat.ModTime()

	return rec, nil
}

// ExtractBytes decodes the metadata of an in-memory WAV file. Only a bad
// RIFF header fails the whole file; an unreadable fmt/data layout or a
// damaged bext, INFO or XML block is reported as a Warning.
func ExtractBytes(name string, data []byte) (*Record, error) {
	r := bytes.NewReader(data)
	if err := CheckHeader(r, int64(len(data))); err != nil {
		return nil, err
	}

	rec := &Record{
		Name: name,
		Size: int64(len(data)),
	}

	audio, err := ReadAudioInfo(r, int64(len(data)))
	if err != nil {
		rec.Warnings = append(rec.Warnings, Warning{Stage: "audio", Message: err.Error()})
	} else {
		rec.Audio = audio
	}

	for chunk := range Walk(data) {
		if chunk.ID != CIDBext {
			continue
		}

		bext, err := DecodeBext(chunk.Payload(data))
		if err != nil {
			rec.Warnings = append(rec.Warnings, Warning{Stage: "bext", Message: err.Error()})
		} else {
			rec.Bext = &bext
		}

		break
	}

	rec.Info = DecodeInfo(data)

	rec.XML, err = DecodeEmbeddedXML(data)
	if err != nil {
		rec.Warnings = append(rec.Warnings, Warning{Stage: "xml", Message: err.Error()})
	}

	return rec, nil
}

// Fields flattens the record into labelled values: audio properties, then
// bext, INFO and XML entries. Empty bext values are omitted.
func (r *Record) Fields() []Field {
	fields := []Field{
		{"Filename", r.Name},
		{"Channels", strconv.Itoa(r.Audio.Channels())},
		{"Sample Width", strconv.Itoa(r.Audio.SampleWidth)},
		{"Frame Rate", strconv.Itoa(r.Audio.Rate())},
		{"Number of Frames", strconv.FormatInt(r.Audio.Frames, 10)},
		{"Duration", strconv.FormatFloat(r.Audio.Duration.Seconds(), 'f', 2, 64)},
	}

	if b := r.Bext; b != nil {
		bextFields := []Field{
			{"Description", b.Description},
			{"Originator", b.Originator},
			{"Originator Reference", b.OriginatorReference},
			{"Origination Date", b.OriginationDate},
			{"Origination Time", b.OriginationTime},
			{"Time Reference", strconv.FormatUint(b.TimeReference, 10)},
			{"BWF Version", strconv.Itoa(int(b.Version))},
			{"UMID", b.UMID},
			{"Loudness Value", b.LoudnessValue.String()},
			{"Loudness Range", b.LoudnessRange.String()},
			{"Max True Peak Level", b.MaxTruePeakLevel.String()},
			{"Max Momentary Loudness", b.MaxMomentaryLoudness.String()},
			{"Max Short Term Loudness", b.MaxShortTermLoudness.String()},
			{"Coding History", b.CodingHistory},
		}
		for _, f := range bextFields {
			if f.Value != "" {
				fields = append(fields, f)
			}
		}
	}

	fields = appendSorted(fields, r.XML)
	fields = appendSorted(fields, r.Info)

	return fields
}

// Map returns Fields as a map. Later fields overwrite earlier ones with the
// same name, so INFO tags win over XML tags of the same name.
func (r *Record) Map() map[string]string {
	out := make(map[string]string)
	for _, f := range r.Fields() {
		out[f.Name] = f.Value
	}

	return out
}

func appendSorted[M ~map[string]string](fields []Field, m M) []Field {
	for _, k := range slices.Sorted(maps.Keys(m)) {
		fields = append(fields, Field{Name: k, Value: m[k]})
	}

	return fields
}

// ExtractOptions configures ExtractAll.
type ExtractOptions struct {
	Workers int
	Logger  *slog.Logger
}

// ExtractAll extracts every path with a bounded worker pool. Records keep
// the order of paths; failed files are left out and returned separately.
// The error is non-nil only when ctx is cancelled.
func ExtractAll(ctx context.Context, paths []string, opts ExtractOptions) ([]*Record, []FileError, error) {
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	records := make([]*Record, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			rec, err := Extract(path)
			if err != nil {
				errs[i] = err
				return nil
			}

			for _, w := range rec.Warnings {
				logger.Debug("metadata block skipped", slog.String("path", path), slog.String("warning", w.String()))
			}

			records[i] = rec

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	out := make([]*Record, 0, len(paths))

	var failures []FileError

	for i, rec := range records {
		if errs[i] != nil {
			logger.Warn("skipping file", slog.String("path", paths[i]), slog.Any("error", errs[i]))
			failures = append(failures, FileError{Path: paths[i], Err: errs[i]})

			continue
		}

		out = append(out, rec)
	}

	return out, failures, nil
}
