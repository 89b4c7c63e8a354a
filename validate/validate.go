// Package validate inspects uploaded patient files before they are stored.
package validate

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxFileBytes is the upload size ceiling.
const MaxFileBytes = 8 << 20 // 8 MiB

var allowedExt = map[string]struct{}{
	"pdf": {}, "jpg": {}, "jpeg": {}, "png": {}, "txt": {}, "doc": {}, "docx": {},
}

var imageExt = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {},
}

// Status classifies a validation outcome.
type Status int

const (
	Accepted Status = iota
	Rejected
	// AcceptedSuspicious means the file is stored but flagged for review:
	// the detected content type does not match what the extension claims.
	AcceptedSuspicious
)

// Result is the outcome of a single validation pass.
type Result struct {
	Status Status
	Reason string // set when Rejected
	MIME   string // detected content type, when detection ran
}

// Check validates one upload in a single synchronous pass over the buffer.
// It never touches disk and has no side effects.
func Check(filename string, data []byte) Result {
	ext := Ext(filename)
	if ext == "" {
		return Result{Status: Rejected, Reason: "File type not allowed"}
	}
	if _, ok := allowedExt[ext]; !ok {
		return Result{Status: Rejected, Reason: "File type not allowed"}
	}
	if len(data) > MaxFileBytes {
		return Result{Status: Rejected, Reason: "File too large (max 8 MB)"}
	}

	if _, isImage := imageExt[ext]; isImage && sniffImage(data) == "" {
		return Result{Status: Rejected, Reason: "Uploaded image appears invalid"}
	}
	if ext == "pdf" && !bytes.HasPrefix(data, []byte("%PDF")) {
		return Result{Status: Rejected, Reason: "Uploaded PDF appears invalid"}
	}

	// Stronger detection: a category mismatch flags the upload instead of
	// rejecting it, so a human can review the stored file.
	mt := mimetype.Detect(data)
	res := Result{Status: Accepted, MIME: mt.String()}
	if _, isImage := imageExt[ext]; isImage && !strings.HasPrefix(mt.String(), "image/") {
		res.Status = AcceptedSuspicious
	}
	if ext == "pdf" && !mt.Is("application/pdf") {
		res.Status = AcceptedSuspicious
	}
	return res
}

// Ext returns the lower-cased extension without the dot, or "" when the
// filename has none.
func Ext(filename string) string {
	e := filepath.Ext(filename)
	if e == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(e, "."))
}

// sniffImage identifies common image formats from their magic bytes,
// returning the format name or "".
func sniffImage(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\xff\xd8\xff")):
		return "jpeg"
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "png"
	case bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a")):
		return "gif"
	case bytes.HasPrefix(data, []byte("BM")):
		return "bmp"
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "webp"
	}
	return ""
}

// SanitizeFilename reduces a user-supplied name to a form that is safe to
// embed in a storage name. The result is display-fallback only; storage
// names themselves are randomly generated.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		out = "file"
	}
	return out
}
