// Package validators checks user input before it reaches storage or the database
package validators

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileNameTooLong     = errors.New("file name is too long")
	ErrFileTypeUnsupported = errors.New("unsupported file type")
	ErrNoFile              = errors.New("no file provided")
)

const maxFileNameSize = 255

// Oversized describes a single file rejected by the size ceiling
type Oversized struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

func (o Oversized) String() string {
	return fmt.Sprintf("%s (%.1f MB)", o.Name, float64(o.Size)/(1<<20))
}

// OversizedError lists every file of a selection that exceeded the ceiling
type OversizedError struct {
	Files   []Oversized
	MaxSize int64
}

func (e *OversizedError) Error() string {
	names := make([]string, len(e.Files))
	for i, f := range e.Files {
		names[i] = f.String()
	}

	return fmt.Sprintf("files exceed the %d MB limit: %s", e.MaxSize>>20, strings.Join(names, ", "))
}

func (e *OversizedError) Unwrap() error {
	return ErrFileTooLarge
}

// Sized is anything CheckSizes can measure
type Sized interface {
	FileName() string
	FileSize() int64
}

// CheckSizes returns every file bigger than maxSize. A non-empty result
// means the whole selection has to be rejected
func CheckSizes[T Sized](files []T, maxSize int64) []Oversized {
	var out []Oversized
	for _, f := range files {
		if f.FileSize() > maxSize {
			out = append(out, Oversized{Name: f.FileName(), Size: f.FileSize()})
		}
	}

	return out
}

// CheckSelection wraps CheckSizes into an error
func CheckSelection[T Sized](files []T, maxSize int64) error {
	if over := CheckSizes(files, maxSize); len(over) > 0 {
		return &OversizedError{Files: over, MaxSize: maxSize}
	}

	return nil
}

// Header adapts a multipart header to Sized
type Header struct{ *multipart.FileHeader }

func (h Header) FileName() string { return h.Filename }
func (h Header) FileSize() int64  { return h.Size }

// Headers wraps every multipart header of a form field
func Headers(fhs []*multipart.FileHeader) []Header {
	out := make([]Header, len(fhs))
	for i, fh := range fhs {
		out[i] = Header{fh}
	}

	return out
}

// FileValidator checks a single uploaded file and returns it opened and
// rewound together with its sniffed MIME type. The returned code is the
// HTTP status to answer with when err != nil
func FileValidator(fh *multipart.FileHeader, maxSize int64, allowed []string) (int, multipart.File, string, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, "", ErrNoFile
	}

	if len(fh.Filename) > maxFileNameSize {
		return http.StatusBadRequest, nil, "", ErrFileNameTooLong
	}

	if fh.Size > maxSize {
		return http.StatusRequestEntityTooLarge, nil, "", ErrFileTooLarge
	}

	// Headers are easy to spoof so the content is sniffed as well
	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, "", err
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	if !MimeAllowed(mime.String(), allowed) {
		f.Close()
		return http.StatusUnsupportedMediaType, nil, "", ErrFileTypeUnsupported
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	return 0, f, mime.String(), nil
}

// MimeAllowed matches a MIME type against a list of prefixes. An empty
// list allows everything
func MimeAllowed(mime string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}

	for _, p := range allowed {
		if strings.HasPrefix(mime, p) {
			return true
		}
	}

	return false
}
