package wavmeta

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	bextDescriptionLen         = 256
	bextOriginatorLen          = 32
	bextOriginatorReferenceLen = 32
	bextOriginationDateLen     = 10
	bextOriginationTimeLen     = 8
	bextUMIDLen                = 64
	bextReservedLen            = 180

	bextTimeRefOffset  = 338
	bextVersionOffset  = 346
	bextUMIDOffset     = 348
	bextLoudnessOffset = 412

	// BextMinLegacyLen is the smallest bext payload that still carries the
	// version field.
	BextMinLegacyLen = bextVersionOffset + 2
	// BextMinLen is the size of a version 1 bext payload without coding history.
	BextMinLen = 602

	loudnessNotSpecified = math.MinInt16 // 0x8000
)

// ErrBextTooShort is returned when a bext payload ends before the version field.
var ErrBextTooShort = errors.New("bext chunk too short")

// Loudness is an optional signed fixed-point level stored in hundredths
// (LUFS, LU or dBTP).
type Loudness struct {
	Raw   int16
	Valid bool
}

// LoudnessOf converts v to a valid hundredths value.
func LoudnessOf(v float64) Loudness {
	return Loudness{Raw: int16(math.Round(v * 100)), Valid: true}
}

func decodeLoudness(raw int16) Loudness {
	if raw == loudnessNotSpecified {
		return Loudness{}
	}

	return Loudness{Raw: raw, Valid: true}
}

func (l Loudness) encode() int16 {
	if !l.Valid {
		return loudnessNotSpecified
	}

	return l.Raw
}

// Value returns the level in its natural unit. It is 0 for absent values;
// check Valid first.
func (l Loudness) Value() float64 {
	return float64(l.Raw) / 100
}

// String formats the level, or returns "" when it is not specified.
func (l Loudness) String() string {
	if !l.Valid {
		return ""
	}

	return strconv.FormatFloat(l.Value(), 'f', -1, 64)
}

// BextRecord holds the fields of a Broadcast Wave extension chunk
// (EBU Tech 3285).
type BextRecord struct {
	Description         string
	Originator          string
	OriginatorReference string
	OriginationDate     string
	OriginationTime     string
	TimeReference       uint64
	Version             uint16
	// UMID is upper-case hex, or empty when all 64 bytes are zero.
	UMID string

	LoudnessValue        Loudness
	LoudnessRange        Loudness
	MaxTruePeakLevel     Loudness
	MaxMomentaryLoudness Loudness
	MaxShortTermLoudness Loudness

	CodingHistory string
}

// DecodeBext decodes a bext chunk payload.
//
// Payloads shorter than BextMinLegacyLen fail with ErrBextTooShort. Legacy
// payloads shorter than BextMinLen that still hold the version are accepted;
// fields they do not cover are left empty. Loudness fields are only read
// for version 1 and later chunks of at least BextMinLen bytes.
func DecodeBext(buf []byte) (BextRecord, error) {
	if len(buf) < BextMinLegacyLen {
		return BextRecord{}, fmt.Errorf("%w: %d bytes, need at least %d", ErrBextTooShort, len(buf), BextMinLegacyLen)
	}

	var bext BextRecord

	offset := 0

	readFixedString := func(n int) string {
		s := asciiText(trimNul(buf[offset : offset+n]))
		offset += n

		return s
	}

	bext.Description = readFixedString(bextDescriptionLen)
	bext.Originator = readFixedString(bextOriginatorLen)
	bext.OriginatorReference = readFixedString(bextOriginatorReferenceLen)
	bext.OriginationDate = readFixedString(bextOriginationDateLen)
	bext.OriginationTime = readFixedString(bextOriginationTimeLen)

	bext.TimeReference = binary.LittleEndian.Uint64(buf[bextTimeRefOffset:])
	bext.Version = binary.LittleEndian.Uint16(buf[bextVersionOffset:])

	if len(buf) >= bextLoudnessOffset {
		umid := buf[bextUMIDOffset:bextLoudnessOffset]
		if !isZero(umid) {
			bext.UMID = strings.ToUpper(hex.EncodeToString(umid))
		}
	}

	if bext.Version >= 1 && len(buf) >= BextMinLen {
		levels := []*Loudness{
			&bext.LoudnessValue,
			&bext.LoudnessRange,
			&bext.MaxTruePeakLevel,
			&bext.MaxMomentaryLoudness,
			&bext.MaxShortTermLoudness,
		}
		for i, l := range levels {
			raw := int16(binary.LittleEndian.Uint16(buf[bextLoudnessOffset+2*i:]))
			*l = decodeLoudness(raw)
		}
	}

	if len(buf) > BextMinLen {
		bext.CodingHistory = strings.TrimSpace(string(bytes.ToValidUTF8(trimNul(buf[BextMinLen:]), nil)))
	}

	return bext, nil
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}

	return true
}

// EncodeBext serializes bext into a chunk payload. Text fields longer than
// their fixed width are truncated. A UMID that is not valid hex is written
// as zeros.
func EncodeBext(bext BextRecord) []byte {
	payload := bytes.NewBuffer(make([]byte, 0, BextMinLen+len(bext.CodingHistory)))
	writeFixedString := func(s string, n int) {
		raw := make([]byte, n)
		copy(raw, s)
		payload.Write(raw)
	}

	writeFixedString(bext.Description, bextDescriptionLen)
	writeFixedString(bext.Originator, bextOriginatorLen)
	writeFixedString(bext.OriginatorReference, bextOriginatorReferenceLen)
	writeFixedString(bext.OriginationDate, bextOriginationDateLen)
	writeFixedString(bext.OriginationTime, bextOriginationTimeLen)

	_ = binary.Write(payload, binary.LittleEndian, bext.TimeReference)
	_ = binary.Write(payload, binary.LittleEndian, bext.Version)

	umid := make([]byte, bextUMIDLen)
	if raw, err := hex.DecodeString(bext.UMID); err == nil {
		copy(umid, raw)
	}

	payload.Write(umid)

	for _, l := range []Loudness{
		bext.LoudnessValue,
		bext.LoudnessRange,
		bext.MaxTruePeakLevel,
		bext.MaxMomentaryLoudness,
		bext.MaxShortTermLoudness,
	} {
		_ = binary.Write(payload, binary.LittleEndian, l.encode())
	}

	payload.Write(make([]byte, bextReservedLen))

	if bext.CodingHistory != "" {
		payload.WriteString(bext.CodingHistory)
	}

	return payload.Bytes()
}
