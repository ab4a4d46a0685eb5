package wavmeta

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

var errInvalidAIFF = errors.New("invalid AIFF file")

// AudioInfo describes the audio stream of a file.
type AudioInfo struct {
	*audio.Format

	FormatTag     uint16
	BitsPerSample int
	// SampleWidth is the size of one sample in bytes, rounded up.
	SampleWidth int
	BlockAlign  int
	Frames      int64
	Duration    time.Duration
}

// Channels returns the channel count, or 0 when the format is unknown.
func (a AudioInfo) Channels() int {
	if a.Format == nil {
		return 0
	}

	return a.NumChannels
}

// Rate returns the sample rate, or 0 when the format is unknown.
func (a AudioInfo) Rate() int {
	if a.Format == nil {
		return 0
	}

	return a.SampleRate
}

// ReadAudioInfo decodes the fmt chunk of a RIFF/WAVE stream and derives the
// frame count and duration from the first data chunk. A data chunk cut
// short by the end of the stream counts only the bytes present.
func ReadAudioInfo(r io.ReaderAt, size int64) (AudioInfo, error) {
	if err := CheckHeader(r, size); err != nil {
		return AudioInfo{}, err
	}

	var (
		fmtChunk *FmtChunk
		dataLen  int64 = -1
	)

	walker := NewChunkWalker(r, size)

	for chunk := range walker.Chunks() {
		switch chunk.ID {
		case CIDFmt:
			if fmtChunk != nil {
				continue
			}

			payload := make([]byte, chunk.Len())
			if _, err := r.ReadAt(payload, chunk.Start); err != nil {
				return AudioInfo{}, fmt.Errorf("failed to read the fmt chunk: %w", err)
			}

			rc := &riff.Chunk{ID: chunk.ID, Size: len(payload), R: bytes.NewReader(payload)}

			f, err := decodeFmtChunk(rc, &riff.Parser{})
			if err != nil {
				return AudioInfo{}, err
			}

			decodeFmtExtensible(f, payload)
			fmtChunk = f
		case CIDData:
			if dataLen < 0 {
				dataLen = chunk.Len()
			}
		}

		if fmtChunk != nil && dataLen >= 0 {
			break
		}
	}

	if fmtChunk == nil {
		return AudioInfo{}, ErrNoFmtChunk
	}

	if dataLen < 0 {
		// an interrupted recording or a streaming writer leaves the data
		// size larger than the file; count what is there
		if tail, ok := walker.Truncated(); ok && tail.ID == CIDData {
			dataLen = tail.Len()
		}
	}

	if dataLen < 0 {
		return AudioInfo{}, ErrNoDataChunk
	}

	info := AudioInfo{
		Format: &audio.Format{
			NumChannels: int(fmtChunk.NumChannels),
			SampleRate:  int(fmtChunk.SampleRate),
		},
		FormatTag:     fmtChunk.EffectiveFormatTag(),
		BitsPerSample: int(fmtChunk.BitsPerSample),
		SampleWidth:   (int(fmtChunk.BitsPerSample) + 7) / 8,
		BlockAlign:    int(fmtChunk.BlockAlign),
	}

	frameSize := info.BlockAlign
	if frameSize == 0 {
		frameSize = info.NumChannels * info.SampleWidth
	}

	if frameSize > 0 {
		info.Frames = dataLen / int64(frameSize)
	}

	info.Duration = framesDuration(info.Frames, info.SampleRate)

	return info, nil
}

// ReadAIFFInfo reads the COMM chunk of an AIFF/AIFF-C stream.
func ReadAIFFInfo(r io.ReadSeeker) (AudioInfo, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return AudioInfo{}, errInvalidAIFF
	}

	info := AudioInfo{
		Format: &audio.Format{
			NumChannels: int(dec.NumChans),
			SampleRate:  int(dec.SampleRate),
		},
		BitsPerSample: int(dec.BitDepth),
		SampleWidth:   (int(dec.BitDepth) + 7) / 8,
		Frames:        int64(dec.NumSampleFrames),
	}

	info.BlockAlign = info.NumChannels * info.SampleWidth
	info.Duration = framesDuration(info.Frames, info.SampleRate)

	return info, nil
}
