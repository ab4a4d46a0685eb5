package wavmeta

import (
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

var (
	// ErrUnparseable marks a file whose RIFF structure could not be used for
	// audio-payload hashing. Callers fall back to a full-file fingerprint.
	ErrUnparseable = errors.New("unparseable RIFF/WAVE file")
	// ErrNotRiffWave indicates the file does not start with a RIFF....WAVE header.
	ErrNotRiffWave = errors.New("not a RIFF/WAVE file")
	// ErrNoDataChunk indicates a RIFF/WAVE file without a readable data chunk.
	ErrNoDataChunk = errors.New("data chunk not found")
	// ErrNoFmtChunk indicates a RIFF/WAVE file without a readable fmt chunk.
	ErrNoFmtChunk = errors.New("fmt chunk not found")
	// ErrMissingRoot is returned when a scan root does not exist or is not a directory.
	ErrMissingRoot = errors.New("scan root does not exist")
)

var printable = runes.Remove(runes.Predicate(func(r rune) bool {
	return r == utf8.RuneError || !unicode.IsPrint(r)
}))

// sanitize drops NUL, control and other non-printable runes and trims the
// surrounding whitespace.
func sanitize(s string) string {
	if s == "" {
		return ""
	}

	out, _, err := transform.String(printable, s)
	if err != nil {
		return strings.TrimSpace(s)
	}

	return strings.TrimSpace(out)
}

// asciiText decodes b as ASCII, skipping any byte outside the 7-bit range.
func asciiText(b []byte) string {
	var sb strings.Builder

	sb.Grow(len(b))

	for _, c := range b {
		if c < utf8.RuneSelf {
			sb.WriteByte(c)
		}
	}

	return sanitize(sb.String())
}

func trimNul(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}

	return b[:end]
}

func nullTermBytes(b []byte) []byte {
	for i := range b {
		if b[i] == 0 {
			return b[:i]
		}
	}

	return b
}

func framesDuration(frames int64, sampleRate int) time.Duration {
	if sampleRate <= 0 || frames <= 0 {
		return 0
	}

	secs := frames / int64(sampleRate)
	rem := frames % int64(sampleRate)

	return time.Duration(secs)*time.Second + time.Duration(rem)*time.Second/time.Duration(sampleRate)
}
