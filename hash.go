package wavmeta

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const hashBlockSize = 1 << 20

// HashMode selects which bytes of a file are fingerprinted.
type HashMode int

const (
	// HashFull hashes the whole file.
	HashFull HashMode = iota
	// HashAudioPayload hashes only the payload of the first data chunk of a
	// RIFF/WAVE file.
	HashAudioPayload
)

func (m HashMode) String() string {
	switch m {
	case HashFull:
		return "full"
	case HashAudioPayload:
		return "wav_audio"
	default:
		return fmt.Sprintf("HashMode(%d)", int(m))
	}
}

// Fingerprint is a SHA-256 content digest tagged with the mode that
// produced it. Fingerprints of different modes never compare equal.
type Fingerprint struct {
	Mode   HashMode
	Digest [sha256.Size]byte
}

// String renders the fingerprint as mode:hex.
func (f Fingerprint) String() string {
	return f.Mode.String() + ":" + hex.EncodeToString(f.Digest[:])
}

// FingerprintFile fingerprints the file at path.
//
// In HashAudioPayload mode a file that is not RIFF/WAVE or has no data chunk
// fails with an error wrapping ErrUnparseable; callers are expected to fall
// back to HashFull.
func FingerprintFile(path string, mode HashMode) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Fingerprint{}, fmt.Errorf("stat %s: %w", path, err)
	}

	return FingerprintReader(f, info.Size(), mode)
}

// FingerprintReader fingerprints the first size bytes of r. Data is streamed
// in fixed-size blocks.
func FingerprintReader(r io.ReaderAt, size int64, mode HashMode) (Fingerprint, error) {
	var section *io.SectionReader

	switch mode {
	case HashFull:
		section = io.NewSectionReader(r, 0, size)
	case HashAudioPayload:
		if err := CheckHeader(r, size); err != nil {
			return Fingerprint{}, fmt.Errorf("%w: %w", ErrUnparseable, err)
		}

		chunk, ok := NewChunkWalker(r, size).Find(CIDData)
		if !ok {
			return Fingerprint{}, fmt.Errorf("%w: %w", ErrUnparseable, ErrNoDataChunk)
		}

		section = io.NewSectionReader(r, chunk.Start, chunk.Len())
	default:
		return Fingerprint{}, fmt.Errorf("unknown hash mode %d", mode)
	}

	h := sha256.New()
	if _, err := io.CopyBuffer(h, section, make([]byte, hashBlockSize)); err != nil {
		return Fingerprint{}, fmt.Errorf("failed to hash content: %w", err)
	}

	fp := Fingerprint{Mode: mode}
	copy(fp.Digest[:], h.Sum(nil))

	return fp, nil
}
