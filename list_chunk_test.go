package wavmeta

import (
	"encoding/binary"
	"testing"

	ts "github.com/cwbudde/wavmeta/internal/testsupport"
)

func TestDecodeInfoTrimsAtNul(t *testing.T) {
	list := ts.Chunk{ID: "LIST", Data: append([]byte("INFO"), infoEntry("INAM", "Test Name\x00\x00")...)}
	data := ts.RIFF(ts.FmtPCM(1, 8000, 8), list, ts.Data(ts.PCM(8, 0)))

	info := DecodeInfo(data)
	if got := info["INAM"]; got != "Test Name" {
		t.Fatalf("INAM mismatch: got %q want %q", got, "Test Name")
	}
}

func TestDecodeInfoMultipleEntries(t *testing.T) {
	data := ts.RIFF(
		ts.InfoList(
			[2]string{"INAM", "Kick"},
			[2]string{"IART", "Studio A"},
			[2]string{"ICMT", "odd"},
		),
		ts.Data(ts.PCM(4, 0)),
	)

	info := DecodeInfo(data)

	want := InfoMap{"INAM": "Kick", "IART": "Studio A", "ICMT": "odd"}
	if len(info) != len(want) {
		t.Fatalf("entry count mismatch: got %v want %v", info, want)
	}

	for k, v := range want {
		if info[k] != v {
			t.Fatalf("%s mismatch: got %q want %q", k, info[k], v)
		}
	}
}

func TestDecodeInfoLastListWins(t *testing.T) {
	data := ts.RIFF(
		ts.InfoList([2]string{"INAM", "first"}, [2]string{"ICRD", "2020"}),
		ts.Data(ts.PCM(4, 0)),
		ts.InfoList([2]string{"INAM", "second"}),
	)

	info := DecodeInfo(data)
	if info["INAM"] != "second" {
		t.Fatalf("expected later list to win, got %q", info["INAM"])
	}

	if info["ICRD"] != "2020" {
		t.Fatalf("expected untouched tag to survive, got %q", info["ICRD"])
	}
}

func TestDecodeInfoSkipsOtherListTypes(t *testing.T) {
	adtl := ts.Chunk{ID: "LIST", Data: append([]byte("adtl"), infoEntry("labl", "cue")...)}
	data := ts.RIFF(adtl, ts.InfoList([2]string{"INAM", "ok"}))

	info := DecodeInfo(data)
	if _, ok := info["labl"]; ok {
		t.Fatal("entries of a non-INFO list must be ignored")
	}

	if info["INAM"] != "ok" {
		t.Fatalf("INAM mismatch: got %q", info["INAM"])
	}
}

func TestDecodeInfoStopsAtListEnd(t *testing.T) {
	body := append([]byte("INFO"), infoEntry("INAM", "inside")...)
	listSize := uint32(len(body))
	body = append(body, infoEntry("IART", "outside")...)

	list := ts.Chunk{ID: "LIST", Data: body}.WithSize(listSize)
	info := decodeListBytes(list)

	if info["INAM"] != "inside" {
		t.Fatalf("INAM mismatch: got %q", info["INAM"])
	}

	if _, ok := info["IART"]; ok {
		t.Fatal("sub-chunk past the LIST end must not be decoded")
	}
}

func TestDecodeInfoTruncatedEntry(t *testing.T) {
	entry := infoEntry("INAM", "complete")
	broken := []byte("IART")
	broken = binary.LittleEndian.AppendUint32(broken, 400)
	broken = append(broken, "short"...)

	list := ts.Chunk{ID: "LIST", Data: append(append([]byte("INFO"), entry...), broken...)}

	info := decodeListBytes(list)
	if info["INAM"] != "complete" {
		t.Fatalf("INAM mismatch: got %q", info["INAM"])
	}

	if _, ok := info["IART"]; ok {
		t.Fatal("entry overrunning the buffer must be dropped")
	}
}

func TestDecodeInfoTruncatedHeader(t *testing.T) {
	for _, data := range [][]byte{
		[]byte("LIST"),
		[]byte("LIST\x10\x00\x00\x00INF"),
		[]byte("xxLIST\x10\x00\x00\x00INFOIN"),
	} {
		if info := DecodeInfo(data); len(info) != 0 {
			t.Fatalf("expected no entries for %q, got %v", data, info)
		}
	}
}

func TestInfoTagName(t *testing.T) {
	if got := InfoTagName("INAM"); got != "Title" {
		t.Fatalf("INAM name mismatch: got %q", got)
	}

	if got := InfoTagName("IXYZ"); got != "IXYZ" {
		t.Fatalf("unknown tag must map to itself, got %q", got)
	}
}

// infoEntry encodes one raw INFO sub-chunk with text as its exact payload.
func infoEntry(id, text string) []byte {
	out := []byte(id)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(text)))
	out = append(out, text...)

	if len(text)%2 == 1 {
		out = append(out, 0)
	}

	return out
}

// decodeListBytes decodes a buffer holding just the LIST chunk, with no RIFF
// preamble, so the LIST end is also close to the buffer end.
func decodeListBytes(list ts.Chunk) InfoMap {
	return DecodeInfo(ts.RIFF(list)[12:])
}
