// Package testsupport builds RIFF/WAVE byte streams for tests so no binary
// fixtures need to be committed.
package testsupport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// Chunk is one RIFF sub-chunk. Size overrides the declared size when
// non-nil, which lets tests describe truncated or lying headers.
type Chunk struct {
	ID   string
	Data []byte
	Size *uint32
}

// Raw returns a chunk with an arbitrary id and payload.
func Raw(id string, data []byte) Chunk {
	return Chunk{ID: id, Data: data}
}

// WithSize returns c declaring size instead of len(c.Data).
func (c Chunk) WithSize(size uint32) Chunk {
	c.Size = &size
	return c
}

// FmtPCM returns a 16 byte PCM fmt chunk.
func FmtPCM(channels, sampleRate, bitsPerSample int) Chunk {
	blockAlign := channels * ((bitsPerSample + 7) / 8)

	b := make([]byte, 16)
	binary.LittleEndian.PutUint16(b[0:2], 1)
	binary.LittleEndian.PutUint16(b[2:4], uint16(channels))
	binary.LittleEndian.PutUint32(b[4:8], uint32(sampleRate))
	binary.LittleEndian.PutUint32(b[8:12], uint32(sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(b[12:14], uint16(blockAlign))
	binary.LittleEndian.PutUint16(b[14:16], uint16(bitsPerSample))
	return Chunk{ID: "fmt ", Data: b}
}

// Data returns a data chunk carrying payload.
func Data(payload []byte) Chunk {
	return Chunk{ID: "data", Data: payload}
}

// InfoList returns a LIST chunk of type INFO. Each entry is a tag/text
// pair; texts are NUL terminated and padded to an even length.
func InfoList(entries ...[2]string) Chunk {
	body := []byte("INFO")
	for _, e := range entries {
		text := append([]byte(e[1]), 0)
		body = appendChunk(body, Chunk{ID: e[0], Data: text})
	}
	return Chunk{ID: "LIST", Data: body}
}

// PCM returns n deterministic bytes of sample data seeded by seed.
func PCM(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*7) ^ seed
	}
	return b
}

// RIFF assembles a RIFF/WAVE stream from chunks, adding pad bytes after
// odd sized payloads.
func RIFF(chunks ...Chunk) []byte {
	body := []byte("WAVE")
	for _, c := range chunks {
		body = appendChunk(body, c)
	}

	out := make([]byte, 8, 8+len(body))
	copy(out, "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(body)))
	return append(out, body...)
}

func appendChunk(dst []byte, c Chunk) []byte {
	size := uint32(len(c.Data))
	if c.Size != nil {
		size = *c.Size
	}

	var hdr [8]byte
	copy(hdr[:4], c.ID)
	binary.LittleEndian.PutUint32(hdr[4:], size)

	dst = append(dst, hdr[:]...)
	dst = append(dst, c.Data...)
	if len(c.Data)%2 == 1 {
		dst = append(dst, 0)
	}
	return dst
}

// WriteWAV writes data to dir/name, creating parent directories, and
// returns the full path.
func WriteWAV(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

var (
	errFileTooSmall         = errors.New("file too small")
	errInvalidRiffWaveHdr   = errors.New("invalid riff/wave header")
	errChunkExceedsFileSize = errors.New("chunk exceeds file size")
)

// ParseChunks is a strict reference walker: unlike the production walker
// it fails on the first chunk that overruns the buffer.
func ParseChunks(data []byte) ([]Chunk, error) {
	if len(data) < 12 {
		return nil, errFileTooSmall
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errInvalidRiffWaveHdr
	}

	var chunks []Chunk

	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += 8

		end := offset + int(size)
		if end > len(data) {
			return nil, fmt.Errorf("%w: %q", errChunkExceedsFileSize, id)
		}

		chunks = append(chunks, Chunk{ID: id, Data: append([]byte(nil), data[offset:end]...)})

		offset = end
		if size%2 == 1 {
			offset++
		}
	}

	return chunks, nil
}
