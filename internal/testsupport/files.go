package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// Magic prefixes recognised by content sniffing.
var (
	PNGHeader = []byte("\x89PNG\r\n\x1a\n")
	MP3Header = []byte("ID3\x03\x00\x00\x00\x00\x00\x00")
)

// WriteMediaFile creates path with header followed by padding up to size
// bytes, so upload code sees the intended content type and length.
func WriteMediaFile(t testing.TB, path string, header []byte, size int64) {
	t.Helper()

	if size < int64(len(header)) {
		size = int64(len(header))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	if _, err := f.Write(header); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	const chunkSize = 32 * 1024
	chunk := bytes.Repeat([]byte{0}, chunkSize)
	for remaining := size - int64(len(header)); remaining > 0; {
		n := min(remaining, int64(chunkSize))
		if _, err := f.Write(chunk[:n]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= n
	}
}
