// Package wavmeta extracts embedded metadata from WAV files and finds
// duplicate audio by content.
//
// The package walks RIFF chunks directly from a byte buffer or an
// io.ReaderAt and decodes the metadata blocks media tools care about:
//
//   - the Broadcast Wave extension chunk (bext), including the version 1
//     loudness fields
//   - LIST/INFO tag lists
//   - an embedded ebuCore XML fragment
//
// Decoders never read past the buffer they were given. A damaged or
// truncated chunk stops the walk for that file only; whatever was decoded
// before it is kept.
//
// Duplicate detection groups files by size and then by a SHA-256
// fingerprint. In HashAudioPayload mode only the bytes of the data chunk
// are hashed, so two recordings that differ only in their metadata compare
// equal.
package wavmeta
