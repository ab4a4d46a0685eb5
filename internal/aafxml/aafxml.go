// Package aafxml renders a simplified AAF (Advanced Authoring Format) XML
// description of a WAV file: one MasterMob carrying the bext metadata, the
// UCS categorization and a single audio timeline slot.
package aafxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cwbudde/wavmeta"
	"github.com/cwbudde/wavmeta/internal/fileutil"
	"github.com/cwbudde/wavmeta/internal/ucs"
)

const (
	// Namespace is the AAF XML namespace.
	Namespace = "http://www.aafassociation.org/aafxml"
	// Version is the AAF XML version written to every document.
	Version = "1.1"
	// Generator identifies this tool in generated documents.
	Generator = "wavmeta"

	// OutputExt is appended to the input stem to name output files.
	OutputExt = ".aaf.xml"
	// DefaultFPS is the timecode rate of AudioProperties/Duration.
	DefaultFPS = 25
)

// Document is the AAF root element.
type Document struct {
	XMLName        xml.Name       `xml:"AAF"`
	Xmlns          string         `xml:"xmlns,attr"`
	Version        string         `xml:"version,attr"`
	Generator      string         `xml:"generator,attr"`
	Timestamp      string         `xml:"timestamp,attr"`
	Header         Header         `xml:"Header"`
	ContentStorage ContentStorage `xml:"ContentStorage"`
}

type Header struct {
	Version      string `xml:"Version"`
	Generator    string `xml:"Generator"`
	CreationTime string `xml:"CreationTime"`
}

type ContentStorage struct {
	MasterMob MasterMob `xml:"MasterMob"`
}

type MasterMob struct {
	MobID        string          `xml:"MobID,attr"`
	Name         string          `xml:"Name"`
	CreationTime string          `xml:"CreationTime"`
	LastModified string          `xml:"LastModified"`
	Bext         *BextMetadata   `xml:"BextMetadata,omitempty"`
	UCS          *UCSMetadata    `xml:"UCSMetadata,omitempty"`
	Slot         TimelineMobSlot `xml:"TimelineMobSlot"`
}

// BextMetadata holds one child element per non-empty bext field.
type BextMetadata struct {
	Properties []Property
}

// Property is an element whose name is chosen at build time.
type Property struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type UCSMetadata struct {
	Primary      *UCSCategory     `xml:"PrimaryCategory,omitempty"`
	Alternatives *UCSAlternatives `xml:"AlternativeCategories,omitempty"`
}

type UCSAlternatives struct {
	Categories []UCSCategory `xml:"Category"`
}

type UCSCategory struct {
	ID          string `xml:"ID"`
	FullName    string `xml:"FullName"`
	Category    string `xml:"Category"`
	SubCategory string `xml:"SubCategory"`
	MatchScore  string `xml:"MatchScore"`
}

type TimelineMobSlot struct {
	SlotID   int        `xml:"SlotID,attr"`
	SlotName string     `xml:"SlotName"`
	EditRate int        `xml:"EditRate"`
	Clip     SourceClip `xml:"SourceClip"`
}

type SourceClip struct {
	StartTime int64           `xml:"StartTime"`
	Length    int64           `xml:"Length"`
	Audio     AudioProperties `xml:"AudioProperties"`
	File      FileReference   `xml:"FileReference"`
}

type AudioProperties struct {
	SampleRate  int    `xml:"SampleRate"`
	Channels    int    `xml:"Channels"`
	SampleWidth int    `xml:"SampleWidth"`
	Duration    string `xml:"Duration"`
	FileSize    int64  `xml:"FileSize"`
}

type FileReference struct {
	FileName string `xml:"FileName"`
	FilePath string `xml:"FilePath"`
}

// MobID derives a stable urn:uuid identifier from a file name.
func MobID(name string) string {
	return uuid.NewMD5(uuid.NameSpaceURL, []byte(name)).URN()
}

// Options configures Build.
type Options struct {
	// FPS is the Duration timecode rate; DefaultFPS when zero.
	FPS int
	// Categories is the UCS result for the file, if any.
	Categories *ucs.Result
	// Now stamps the document; time.Now when zero.
	Now time.Time
}

// Build assembles the document of one extracted record.
func Build(rec *wavmeta.Record, opts Options) *Document {
	fps := opts.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	stamp := now.Format(time.RFC3339)

	mob := MasterMob{
		MobID:        MobID(rec.Name),
		Name:         rec.Name,
		CreationTime: creationTime(rec),
		LastModified: formatTime(rec.ModTime),
		Bext:         bextMetadata(rec.Bext),
		UCS:          ucsMetadata(opts.Categories),
		Slot: TimelineMobSlot{
			SlotID:   1,
			SlotName: "Audio",
			EditRate: rec.Audio.Rate(),
			Clip: SourceClip{
				Length: rec.Audio.Frames,
				Audio: AudioProperties{
					SampleRate:  rec.Audio.Rate(),
					Channels:    rec.Audio.Channels(),
					SampleWidth: rec.Audio.SampleWidth,
					Duration:    wavmeta.Timecode(rec.Audio.Duration, fps),
					FileSize:    rec.Size,
				},
				File: FileReference{
					FileName: rec.Name,
					FilePath: rec.Path,
				},
			},
		},
	}

	return &Document{
		Xmlns:     Namespace,
		Version:   Version,
		Generator: Generator,
		Timestamp: stamp,
		Header: Header{
			Version:      Version,
			Generator:    Generator,
			CreationTime: stamp,
		},
		ContentStorage: ContentStorage{MasterMob: mob},
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// creationTime prefers the bext origination stamp over the file time.
func creationTime(rec *wavmeta.Record) string {
	if b := rec.Bext; b != nil && b.OriginationDate != "" {
		clock := strings.ReplaceAll(b.OriginationTime, "-", ":")
		if t, err := time.Parse("2006-01-02T15:04:05", b.OriginationDate+"T"+clock); err == nil {
			return t.Format("2006-01-02T15:04:05")
		}
		if t, err := time.Parse("2006-01-02", b.OriginationDate); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return formatTime(rec.ModTime)
}

func bextMetadata(b *wavmeta.BextRecord) *BextMetadata {
	if b == nil {
		return nil
	}

	fields := []struct {
		key   string
		value string
	}{
		{"description", b.Description},
		{"originator", b.Originator},
		{"originator_reference", b.OriginatorReference},
		{"origination_date", b.OriginationDate},
		{"origination_time", b.OriginationTime},
		{"time_reference", strconv.FormatUint(b.TimeReference, 10)},
		{"version", strconv.Itoa(int(b.Version))},
		{"umid", b.UMID},
		{"loudness_value", b.LoudnessValue.String()},
		{"loudness_range", b.LoudnessRange.String()},
		{"max_true_peak", b.MaxTruePeakLevel.String()},
		{"max_momentary_loudness", b.MaxMomentaryLoudness.String()},
		{"max_short_term_loudness", b.MaxShortTermLoudness.String()},
		{"coding_history", b.CodingHistory},
	}

	title := cases.Title(language.Und)

	md := &BextMetadata{}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		name := title.String(strings.ReplaceAll(f.key, "_", ""))
		md.Properties = append(md.Properties, Property{XMLName: xml.Name{Local: name}, Value: f.value})
	}
	return md
}

func ucsMetadata(res *ucs.Result) *UCSMetadata {
	if res == nil {
		return nil
	}

	md := &UCSMetadata{Primary: ucsCategory(res.Primary)}
	if len(res.Alternatives) > 0 {
		md.Alternatives = &UCSAlternatives{}
		for _, alt := range res.Alternatives {
			md.Alternatives.Categories = append(md.Alternatives.Categories, *ucsCategory(alt))
		}
	}
	return md
}

func ucsCategory(m ucs.Match) *UCSCategory {
	return &UCSCategory{
		ID:          m.ID,
		FullName:    m.FullName,
		Category:    m.Category.Category,
		SubCategory: m.SubCategory,
		MatchScore:  strconv.FormatFloat(m.Score, 'f', 1, 64),
	}
}

// Write renders doc as indented XML with a declaration.
func Write(w io.Writer, doc *Document) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode aaf xml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}

	_, err := io.WriteString(w, "\n")
	return err
}

// WriteFile writes doc to path atomically.
func WriteFile(path string, doc *Document) error {
	return fileutil.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		return Write(w, doc)
	})
}

// OutputName returns the output file name for an input WAV path,
// "<stem>.aaf.xml".
func OutputName(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + OutputExt
}
