package wavmeta

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/go-audio/riff"
)

const (
	wavFormatPCM        = 0x0001
	wavFormatIEEEFloat  = 0x0003
	wavFormatALaw       = 0x0006
	wavFormatMuLaw      = 0x0007
	wavFormatGSM610     = 0x0031
	wavFormatMPEG       = 0x0050
	wavFormatExtensible = 0xFFFE

	fmtBaseLen       = 16
	fmtExtensibleLen = 22
)

var errNilChunkOrParser = errors.New("nil chunk/parser pointer")

// FmtChunk stores the parsed WAV fmt chunk, including extensible metadata.
type FmtChunk struct {
	FormatTag      uint16
	NumChannels    uint16
	SampleRate     uint32
	AvgBytesPerSec uint32
	BlockAlign     uint16
	BitsPerSample  uint16
	Extensible     *FmtExtensible
}

// FmtExtensible stores WAVE_FORMAT_EXTENSIBLE extra fields.
type FmtExtensible struct {
	ValidBitsPerSample uint16
	ChannelMask        uint32
	SubFormat          [16]byte
}

// EffectiveFormatTag resolves WAVE_FORMAT_EXTENSIBLE to its sub-format.
func (f *FmtChunk) EffectiveFormatTag() uint16 {
	if f == nil {
		return 0
	}

	if f.FormatTag == wavFormatExtensible && f.Extensible != nil {
		return binary.LittleEndian.Uint16(f.Extensible.SubFormat[:2])
	}

	return f.FormatTag
}

// FormatName returns a short label for a WAV format tag.
func FormatName(tag uint16) string {
	switch tag {
	case wavFormatPCM:
		return "PCM"
	case wavFormatIEEEFloat:
		return "IEEE float"
	case wavFormatALaw:
		return "A-law"
	case wavFormatMuLaw:
		return "mu-law"
	case wavFormatGSM610:
		return "GSM 6.10"
	case wavFormatMPEG:
		return "MPEG"
	case wavFormatExtensible:
		return "Extensible"
	default:
		return fmt.Sprintf("0x%04X", tag)
	}
}

func decodeFmtChunk(chunk *riff.Chunk, parser *riff.Parser) (*FmtChunk, error) {
	if chunk == nil || parser == nil {
		return nil, errNilChunkOrParser
	}

	if chunk.Size < fmtBaseLen {
		return nil, fmt.Errorf("fmt chunk of %d bytes is too small", chunk.Size)
	}

	if err := chunk.DecodeWavHeader(parser); err != nil {
		return nil, fmt.Errorf("failed to decode fmt chunk: %w", err)
	}

	fmtChunk := &FmtChunk{
		FormatTag:      parser.WavAudioFormat,
		NumChannels:    parser.NumChannels,
		SampleRate:     parser.SampleRate,
		AvgBytesPerSec: parser.AvgBytesPerSec,
		BlockAlign:     parser.BlockAlign,
		BitsPerSample:  parser.BitsPerSample,
	}

	return fmtChunk, nil
}

// decodeFmtExtensible reads the extensible block that follows the 16 byte
// base layout: cbSize, valid bits, channel mask, sub-format GUID.
func decodeFmtExtensible(f *FmtChunk, payload []byte) {
	if f == nil || f.FormatTag != wavFormatExtensible || len(payload) < fmtBaseLen+2 {
		return
	}

	extraSize := int(binary.LittleEndian.Uint16(payload[fmtBaseLen:]))
	extra := payload[fmtBaseLen+2:]

	if extraSize < fmtExtensibleLen || len(extra) < fmtExtensibleLen {
		return
	}

	ext := &FmtExtensible{
		ValidBitsPerSample: binary.LittleEndian.Uint16(extra[0:2]),
		ChannelMask:        binary.LittleEndian.Uint32(extra[2:6]),
	}
	copy(ext.SubFormat[:], extra[6:22])

	f.Extensible = ext
}
