package wavmeta

import (
	"bytes"
	"encoding/binary"
	"strings"
)

// InfoMap maps a four character INFO tag (INAM, ICRD, ...) to its text.
type InfoMap map[string]string

// See http://bwfmetaedit.sourceforge.net/listinfo.html
var infoTagNames = map[string]string{
	"IARL": "Archival Location",
	"IART": "Artist",
	"ICMS": "Commissioned",
	"ICMT": "Comments",
	"ICOP": "Copyright",
	"ICRD": "Creation Date",
	"IENG": "Engineer",
	"IGNR": "Genre",
	"IKEY": "Keywords",
	"IMED": "Medium",
	"INAM": "Title",
	"IPRD": "Product",
	"ISBJ": "Subject",
	"ISFT": "Software",
	"ISRC": "Source",
	"ISRF": "Source Form",
	"ITCH": "Technician",
	"ITRK": "Track Number",
	"itrk": "Track Number",
}

// InfoTagName returns a readable name for an INFO tag, or the tag itself
// when it is not a well-known one.
func InfoTagName(tag string) string {
	if name, ok := infoTagNames[tag]; ok {
		return name
	}

	return tag
}

// DecodeInfo scans the whole buffer for LIST chunks of type INFO and
// collects their sub-chunks.
//
// Each entry's text ends at its first NUL byte. Sub-chunk parsing never
// goes past the enclosing LIST's declared end or the end of data. When the
// same tag appears in several INFO lists, the last one wins.
func DecodeInfo(data []byte) InfoMap {
	info := InfoMap{}

	pos := 0
	for pos < len(data) {
		idx := bytes.Index(data[pos:], CIDList[:])
		if idx < 0 {
			break
		}

		start := pos + idx
		// always move past this match, INFO or not
		pos = start + 4

		if start+12 > len(data) {
			break
		}

		if !bytes.Equal(data[start+8:start+12], CIDInfo[:]) {
			continue
		}

		listEnd := int64(start) + chunkHeaderLen + int64(binary.LittleEndian.Uint32(data[start+4:]))
		decodeInfoEntries(data, int64(start+12), listEnd, info)
	}

	return info
}

func decodeInfoEntries(data []byte, offset, listEnd int64, info InfoMap) {
	dataEnd := int64(len(data))

	for offset+chunkHeaderLen <= listEnd && offset+chunkHeaderLen <= dataEnd {
		id := string(data[offset : offset+4])
		size := int64(binary.LittleEndian.Uint32(data[offset+4:]))
		start := offset + chunkHeaderLen
		end := start + size

		if end > dataEnd || end > listEnd {
			return
		}

		text := nullTermBytes(data[start:end])
		info[id] = sanitize(strings.ToValidUTF8(string(text), ""))

		offset = end + size%2
	}
}
