package wavmeta

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"iter"

	"github.com/go-audio/riff"
)

const (
	riffHeaderLen  = 12
	chunkHeaderLen = 8
)

// ChunkWalker iterates over the top-level chunks of a RIFF/WAVE stream.
//
// The walk starts right after the 12 byte RIFF header, which the caller is
// expected to have validated with CheckHeader. Chunks are produced in file
// order. Odd sized chunks are followed by one pad byte. A chunk whose
// declared size reaches past the end of the stream ends the walk without
// being produced; Truncated reports it.
type ChunkWalker struct {
	r    io.ReaderAt
	size int64
}

// NewChunkWalker returns a walker over the first size bytes of r.
func NewChunkWalker(r io.ReaderAt, size int64) *ChunkWalker {
	return &ChunkWalker{r: r, size: size}
}

// Chunks returns the chunk sequence. Each range over the sequence restarts
// the walk from the first chunk.
func (w *ChunkWalker) Chunks() iter.Seq[RiffChunk] {
	return func(yield func(RiffChunk) bool) {
		w.walk(yield)
	}
}

// Truncated returns the trailing chunk that ended the walk because its
// declared size reaches past the end of the stream. End is clamped to the
// stream size; Size keeps the declared value.
func (w *ChunkWalker) Truncated() (RiffChunk, bool) {
	return w.walk(func(RiffChunk) bool { return true })
}

func (w *ChunkWalker) walk(yield func(RiffChunk) bool) (RiffChunk, bool) {
	if w == nil || w.r == nil {
		return RiffChunk{}, false
	}

	var hdr [chunkHeaderLen]byte

	offset := int64(riffHeaderLen)
	for offset+chunkHeaderLen <= w.size {
		if _, err := w.r.ReadAt(hdr[:], offset); err != nil {
			return RiffChunk{}, false
		}

		size := binary.LittleEndian.Uint32(hdr[4:])
		start := offset + chunkHeaderLen
		end := start + int64(size)

		chunk := RiffChunk{Size: size, Start: start, End: end}
		copy(chunk.ID[:], hdr[:4])

		if end > w.size {
			// truncated or corrupt trailing chunk
			chunk.End = w.size
			return chunk, true
		}

		if !yield(chunk) {
			return RiffChunk{}, false
		}

		offset = end + int64(size%2)
	}

	return RiffChunk{}, false
}

// Find returns the first chunk with the given ID.
func (w *ChunkWalker) Find(id [4]byte) (RiffChunk, bool) {
	for chunk := range w.Chunks() {
		if chunk.ID == id {
			return chunk, true
		}
	}

	return RiffChunk{}, false
}

// Walk returns the chunk sequence of an in-memory RIFF/WAVE buffer.
func Walk(data []byte) iter.Seq[RiffChunk] {
	return NewChunkWalker(bytes.NewReader(data), int64(len(data))).Chunks()
}

// IsRiffWave reports whether header starts with a RIFF....WAVE preamble.
func IsRiffWave(header []byte) bool {
	if len(header) < riffHeaderLen {
		return false
	}

	return bytes.Equal(header[0:4], riff.RiffID[:]) && bytes.Equal(header[8:12], riff.WavFormatID[:])
}

// CheckHeader validates the RIFF/WAVE preamble of r.
func CheckHeader(r io.ReaderAt, size int64) error {
	if size < riffHeaderLen {
		return fmt.Errorf("%w: %d bytes is too small", ErrNotRiffWave, size)
	}

	var hdr [riffHeaderLen]byte

	if _, err := r.ReadAt(hdr[:], 0); err != nil {
		return fmt.Errorf("failed to read the RIFF header: %w", err)
	}

	if !IsRiffWave(hdr[:]) {
		return fmt.Errorf("%w: header %q", ErrNotRiffWave, hdr[:4])
	}

	return nil
}
