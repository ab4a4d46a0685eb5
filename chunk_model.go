package wavmeta

import (
	"github.com/go-audio/riff"
)

var (
	// CIDList is the chunk ID for a LIST chunk.
	CIDList = [4]byte{'L', 'I', 'S', 'T'}
	// CIDInfo is the list type of a LIST chunk carrying INFO tags.
	CIDInfo = [4]byte{'I', 'N', 'F', 'O'}
	// CIDBext is the chunk ID for the broadcast extension chunk.
	CIDBext = [4]byte{'b', 'e', 'x', 't'}
	// CIDData is the chunk ID for the audio payload.
	CIDData = riff.DataFormatID
	// CIDFmt is the chunk ID for the format chunk.
	CIDFmt = riff.FmtID
)

// RiffChunk describes one chunk found while walking a RIFF stream. Start and
// End bound the payload (header excluded) and always lie within the walked
// stream.
type RiffChunk struct {
	ID    [4]byte
	Size  uint32
	Start int64
	End   int64
}

// Len returns the payload length in bytes.
func (c RiffChunk) Len() int64 {
	return c.End - c.Start
}

// Payload returns the chunk payload as a sub-slice of data, the buffer the
// chunk was walked from.
func (c RiffChunk) Payload(data []byte) []byte {
	return data[c.Start:c.End]
}

func (c RiffChunk) String() string {
	return string(c.ID[:])
}
