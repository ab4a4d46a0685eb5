package wavmeta

import (
	"bytes"
	"encoding/binary"
	"errors"
	"slices"
	"testing"

	ts "github.com/cwbudde/wavmeta/internal/testsupport"
)

func chunkIDs(data []byte) []string {
	var ids []string
	for chunk := range Walk(data) {
		ids = append(ids, chunk.String())
	}

	return ids
}

func TestWalkProducesChunksInFileOrder(t *testing.T) {
	data := ts.RIFF(
		ts.FmtPCM(1, 44100, 16),
		ts.Raw("junk", []byte{1, 2, 3}),
		ts.Data(ts.PCM(10, 0)),
	)

	got := chunkIDs(data)
	want := []string{"fmt ", "junk", "data"}

	if !slices.Equal(got, want) {
		t.Fatalf("chunk order mismatch: got %q want %q", got, want)
	}
}

func TestWalkHonoursPadByte(t *testing.T) {
	data := ts.RIFF(
		ts.Raw("odd ", []byte{9, 9, 9}),
		ts.Data([]byte{1, 2}),
	)

	var chunks []RiffChunk
	for chunk := range Walk(data) {
		chunks = append(chunks, chunk)
	}

	if len(chunks) != 2 {
		t.Fatalf("chunk count mismatch: got %d want 2", len(chunks))
	}

	odd := chunks[0]
	if odd.Size != 3 || odd.Len() != 3 {
		t.Fatalf("odd chunk size mismatch: got size=%d len=%d", odd.Size, odd.Len())
	}

	// 12 byte preamble, 8 byte header, 3 bytes payload, 1 pad byte
	if chunks[1].Start != 12+8+4+8 {
		t.Fatalf("data chunk start mismatch: got %d want %d", chunks[1].Start, 12+8+4+8)
	}

	if !bytes.Equal(chunks[1].Payload(data), []byte{1, 2}) {
		t.Fatalf("data payload mismatch: got %v", chunks[1].Payload(data))
	}
}

func TestWalkStopsAtTruncatedChunk(t *testing.T) {
	data := ts.RIFF(
		ts.FmtPCM(1, 8000, 8),
		ts.Data(ts.PCM(16, 1)).WithSize(1000),
		ts.Raw("late", []byte{1, 2}),
	)

	got := chunkIDs(data)
	if !slices.Equal(got, []string{"fmt "}) {
		t.Fatalf("expected walk to stop before the truncated data chunk, got %q", got)
	}
}

func TestWalkHandlesShortTrailer(t *testing.T) {
	data := ts.RIFF(ts.Data([]byte{1, 2}))
	data = append(data, 'x', 'y', 'z')

	got := chunkIDs(data)
	if !slices.Equal(got, []string{"data"}) {
		t.Fatalf("chunk list mismatch: got %q", got)
	}
}

func TestWalkIsRestartable(t *testing.T) {
	data := ts.RIFF(ts.FmtPCM(2, 48000, 24), ts.Data(ts.PCM(12, 3)))
	seq := Walk(data)

	var first, second int
	for range seq {
		first++
	}

	for range seq {
		second++
	}

	if first != 2 || second != 2 {
		t.Fatalf("restart mismatch: first=%d second=%d", first, second)
	}
}

func TestWalkStopsWhenConsumerBreaks(t *testing.T) {
	data := ts.RIFF(ts.Raw("aaaa", nil), ts.Raw("bbbb", nil), ts.Raw("cccc", nil))

	var seen []string
	for chunk := range Walk(data) {
		seen = append(seen, chunk.String())
		if len(seen) == 2 {
			break
		}
	}

	if !slices.Equal(seen, []string{"aaaa", "bbbb"}) {
		t.Fatalf("unexpected chunks: %q", seen)
	}
}

func TestChunkWalkerFind(t *testing.T) {
	data := ts.RIFF(ts.FmtPCM(1, 8000, 8), ts.Data(ts.PCM(4, 0)), ts.Data(ts.PCM(8, 0)))
	w := NewChunkWalker(bytes.NewReader(data), int64(len(data)))

	chunk, ok := w.Find(CIDData)
	if !ok {
		t.Fatal("expected to find a data chunk")
	}

	if chunk.Len() != 4 {
		t.Fatalf("expected the first data chunk, got length %d", chunk.Len())
	}

	if _, ok := w.Find(CIDBext); ok {
		t.Fatal("did not expect a bext chunk")
	}
}

func TestChunkWalkerTruncated(t *testing.T) {
	data := ts.RIFF(ts.FmtPCM(1, 8000, 8), ts.Data(ts.PCM(10, 0)).WithSize(0xFFFFFFFF))
	w := NewChunkWalker(bytes.NewReader(data), int64(len(data)))

	tail, ok := w.Truncated()
	if !ok {
		t.Fatal("expected a truncated trailing chunk")
	}

	if tail.ID != CIDData || tail.Size != 0xFFFFFFFF {
		t.Fatalf("truncated chunk mismatch: %s size %d", tail, tail.Size)
	}

	if tail.End != int64(len(data)) || tail.Len() != 10 {
		t.Fatalf("truncated chunk bounds mismatch: [%d,%d)", tail.Start, tail.End)
	}

	complete := ts.RIFF(ts.FmtPCM(1, 8000, 8), ts.Data(ts.PCM(10, 0)))
	if _, ok := NewChunkWalker(bytes.NewReader(complete), int64(len(complete))).Truncated(); ok {
		t.Fatal("a complete stream has no truncated chunk")
	}
}

func TestCheckHeader(t *testing.T) {
	valid := ts.RIFF(ts.Data(nil))

	tests := []struct {
		name string
		data []byte
		ok   bool
	}{
		{name: "valid", data: valid, ok: true},
		{name: "empty", data: nil},
		{name: "short", data: []byte("RIFF\x00\x00")},
		{name: "rifx", data: append([]byte("RIFX"), valid[4:]...)},
		{name: "avi", data: append(append([]byte{}, valid[:8]...), []byte("AVI ")...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckHeader(bytes.NewReader(tt.data), int64(len(tt.data)))
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}

				return
			}

			if !errors.Is(err, ErrNotRiffWave) {
				t.Fatalf("expected ErrNotRiffWave, got %v", err)
			}
		})
	}
}

func TestWalkAgreesWithStrictParser(t *testing.T) {
	data := ts.RIFF(
		ts.FmtPCM(2, 44100, 16),
		ts.Raw("bext", EncodeBext(BextRecord{Description: "x"})),
		ts.InfoList([2]string{"INAM", "odd"}),
		ts.Data(ts.PCM(7, 2)),
	)

	strict, err := ts.ParseChunks(data)
	if err != nil {
		t.Fatalf("parse chunks: %v", err)
	}

	var got []string
	for chunk := range Walk(data) {
		got = append(got, chunk.String())
	}

	want := make([]string, 0, len(strict))
	for _, c := range strict {
		want = append(want, c.ID)
	}

	if !slices.Equal(got, want) {
		t.Fatalf("walker disagrees with strict parser: got %q want %q", got, want)
	}
}

func FuzzWalk(f *testing.F) {
	f.Add(ts.RIFF(ts.FmtPCM(1, 8000, 8), ts.Data(ts.PCM(9, 0))))
	f.Add(ts.RIFF(ts.Data(nil).WithSize(0xFFFFFFFF)))
	f.Add(ts.RIFF(ts.Raw("odd ", []byte{1}).WithSize(0xFFFFFFFE)))
	f.Add([]byte("RIFF\x00\x00\x00\x00WAVE"))

	f.Fuzz(func(t *testing.T, data []byte) {
		prev := int64(riffHeaderLen)

		for chunk := range Walk(data) {
			if chunk.Start < prev || chunk.End < chunk.Start || chunk.End > int64(len(data)) {
				t.Fatalf("chunk %q out of bounds: [%d,%d) in %d bytes", chunk.ID, chunk.Start, chunk.End, len(data))
			}

			if chunk.Len() != int64(chunk.Size) {
				t.Fatalf("chunk %q length %d does not match size %d", chunk.ID, chunk.Len(), chunk.Size)
			}

			_ = chunk.Payload(data)
			prev = chunk.End
		}

		_ = DecodeInfo(data)
		_ = ExtractEmbeddedXML(data)
	})
}

func TestWalkAdversarialSizes(t *testing.T) {
	for _, size := range []uint32{0x7FFFFFFF, 0x80000000, 0xFFFFFFF7, 0xFFFFFFFF} {
		data := ts.RIFF(ts.FmtPCM(1, 8000, 8))

		var hdr [8]byte
		copy(hdr[:4], "evil")
		binary.LittleEndian.PutUint32(hdr[4:], size)
		data = append(data, hdr[:]...)
		data = append(data, 0, 0, 0, 0)

		got := chunkIDs(data)
		if !slices.Equal(got, []string{"fmt "}) {
			t.Fatalf("size %#x: chunk list mismatch: got %q", size, got)
		}
	}
}
