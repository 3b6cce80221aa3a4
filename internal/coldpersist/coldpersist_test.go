package coldpersist

import (
	"bytes"
	"path/filepath"
	"testing"
)

type fakeFTL struct {
	state []byte
}

func (f *fakeFTL) Snapshot() ([]byte, error) { return append([]byte(nil), f.state...), nil }
func (f *fakeFTL) Restore(data []byte) error {
	f.state = append([]byte(nil), data...)
	return nil
}

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.bin")
	b := NewFileBackend(path)
	payload := []byte("cold tier page map")
	if err := b.WriteSnapshot(payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := b.ReadSnapshot()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: got %q want %q", got, payload)
	}
}

func TestOpenDispatchesFileScheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.bin")
	b, err := Open("file://" + path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := b.(*FileBackend); !ok {
		t.Fatalf("expected a *FileBackend, got %T", b)
	}
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	if _, err := Open("ftp://example.com/x"); err == nil {
		t.Fatal("expected an error for an unrecognized scheme")
	}
}

func TestCompressDecompressRoundTripLZ4(t *testing.T) {
	payload := bytes.Repeat([]byte("abcxyz"), 1000)
	compressed, err := Compress("lz4", payload)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	restored, err := Decompress("lz4", compressed)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(restored, payload) {
		t.Fatal("lz4 round trip mismatch")
	}
}

func TestCompressDecompressRoundTripXZ(t *testing.T) {
	payload := bytes.Repeat([]byte("abcxyz"), 1000)
	compressed, err := Compress("xz", payload)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	restored, err := Decompress("xz", compressed)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(restored, payload) {
		t.Fatal("xz round trip mismatch")
	}
}

func TestCompressNoneIsIdentity(t *testing.T) {
	payload := []byte("plain")
	out, err := Compress("none", payload)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatal("expected none codec to return data unchanged")
	}
}

func TestSaveLoadRoundTripsThroughFileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.bin")
	uri := "file://" + path

	src := &fakeFTL{state: []byte("page map contents")}
	if err := Save(src, uri, "lz4"); err != nil {
		t.Fatalf("save: %v", err)
	}

	dst := &fakeFTL{}
	if err := Load(dst, uri, "lz4"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(dst.state, src.state) {
		t.Fatalf("state mismatch after save/load: got %q want %q", dst.state, src.state)
	}
}
