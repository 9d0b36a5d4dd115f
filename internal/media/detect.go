package media

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// Kind selects the validation rules and key prefix for an upload.
type Kind int

const (
	KindImage Kind = iota
	KindAudio
)

func (k Kind) String() string {
	if k == KindAudio {
		return "audio"
	}
	return "image"
}

const sniffLen = 512

// Extension-based types for formats the sniffer reports as
// application/octet-stream.
var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
}

// detectContentType sniffs the head of r and falls back to the file
// extension when sniffing is inconclusive.
func detectContentType(r io.Reader, name string) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	sniffed := http.DetectContentType(head[:n])
	base, _, _ := mime.ParseMediaType(sniffed)
	if base == "" {
		base = sniffed
	}
	if base == "application/octet-stream" || base == "text/plain" || base == "text/xml" {
		if byExt, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]; ok {
			return byExt, nil
		}
	}
	return base, nil
}

func allowed(kind Kind, contentType string) bool {
	switch kind {
	case KindAudio:
		return strings.HasPrefix(contentType, "audio/") || strings.HasPrefix(contentType, "video/")
	default:
		return strings.HasPrefix(contentType, "image/")
	}
}

// extensionFor picks the key extension, preferring the source file's own.
func extensionFor(name, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(name)); ext != "" && len(ext) <= 6 {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
