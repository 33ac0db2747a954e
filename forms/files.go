package forms

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const MaxUploadBytes = 5 << 20

var (
	ImageTypes    = []string{"image/jpeg", "image/png", "image/webp"}
	DocumentTypes = []string{"application/pdf", "image/jpeg", "image/png"}
)

// Upload is a file taken from a multipart request.
type Upload struct {
	Filename string
	Size     int64
	Data     []byte
}

// ContentType sniffs the file body; the browser-provided header is not trusted.
func (u *Upload) ContentType() string {
	if u == nil {
		return ""
	}
	return mimetype.Detect(u.Data).String()
}

func (u *Upload) matches(allowed []string) bool {
	m := mimetype.Detect(u.Data)
	for _, a := range allowed {
		if m.Is(a) {
			return true
		}
	}
	return false
}

func checkFile(e Errors, f Field, u *Upload, label string, allowed []string, isRequired bool) {
	if u == nil || u.Size == 0 {
		if isRequired {
			e.Add(f, label+" is required")
		}
		return
	}
	if u.Size > MaxUploadBytes {
		e.Add(f, fmt.Sprintf("%s must be %d MB or smaller", label, MaxUploadBytes>>20))
		return
	}
	if !u.matches(allowed) {
		e.Add(f, fmt.Sprintf("%s must be one of: %s", label, describeTypes(allowed)))
	}
}

func describeTypes(types []string) string {
	names := make([]string, 0, len(types))
	for _, t := range types {
		name := t[strings.Index(t, "/")+1:]
		names = append(names, strings.ToUpper(name))
	}
	return strings.Join(names, ", ")
}
