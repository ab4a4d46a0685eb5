package wavmeta

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	ts "github.com/cwbudde/wavmeta/internal/testsupport"
)

func TestWalkFiles(t *testing.T) {
	root := t.TempDir()

	want := []string{
		ts.WriteWAV(t, root, "a.wav", nil),
		ts.WriteWAV(t, root, "b.WAV", nil),
		ts.WriteWAV(t, root, "sub/c.wav", nil),
		ts.WriteWAV(t, root, "sub/deeper/d.wav", nil),
		ts.WriteWAV(t, root, "z.wav", nil),
	}

	ts.WriteWAV(t, root, "notes.txt", nil)
	ts.WriteWAV(t, root, "sub/cover.jpg", nil)

	got, err := WalkFiles(root, []string{".wav"}, nil)
	if err != nil {
		t.Fatalf("walk files: %v", err)
	}

	if !slices.Equal(got, want) {
		t.Fatalf("walk mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestWalkFilesNoFilter(t *testing.T) {
	root := t.TempDir()
	ts.WriteWAV(t, root, "a.wav", nil)
	ts.WriteWAV(t, root, "b.txt", nil)

	got, err := WalkFiles(root, nil, nil)
	if err != nil {
		t.Fatalf("walk files: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected every file without a filter, got %v", got)
	}
}

func TestWalkFilesSkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	target := ts.WriteWAV(t, root, "real.wav", nil)

	if err := os.Symlink(target, filepath.Join(root, "link.wav")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got, err := WalkFiles(root, []string{"wav"}, nil)
	if err != nil {
		t.Fatalf("walk files: %v", err)
	}

	if !slices.Equal(got, []string{target}) {
		t.Fatalf("expected only the regular file, got %v", got)
	}
}

func TestWalkFilesMissingRoot(t *testing.T) {
	root := t.TempDir()
	file := ts.WriteWAV(t, root, "a.wav", nil)

	for _, path := range []string{filepath.Join(root, "missing"), file} {
		if _, err := WalkFiles(path, nil, nil); !errors.Is(err, ErrMissingRoot) {
			t.Fatalf("%s: expected ErrMissingRoot, got %v", path, err)
		}
	}
}

func TestHasExtension(t *testing.T) {
	tests := []struct {
		path string
		exts []string
		want bool
	}{
		{path: "a.wav", exts: []string{".wav"}, want: true},
		{path: "A.WAV", exts: []string{".wav"}, want: true},
		{path: "a.wave", exts: []string{"WAV", " wave "}, want: true},
		{path: "a.aif", exts: []string{".wav"}, want: false},
		{path: "noext", exts: []string{".wav"}, want: false},
		{path: "anything", exts: nil, want: true},
	}

	for _, tt := range tests {
		if got := HasExtension(tt.path, tt.exts); got != tt.want {
			t.Fatalf("HasExtension(%q, %v) = %v, want %v", tt.path, tt.exts, got, tt.want)
		}
	}
}

func TestFileError(t *testing.T) {
	err := FileError{Path: "x.wav", Err: ErrNotRiffWave}

	if err.Error() != "x.wav: not a RIFF/WAVE file" {
		t.Fatalf("message mismatch: %q", err.Error())
	}

	if !errors.Is(err, ErrNotRiffWave) {
		t.Fatal("FileError must unwrap to its cause")
	}
}
