package form

import (
	"bufio"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dmitrymomot/partsave/core/save"
)

// DefaultTextLimit bounds how much of a bare text part is read into
// memory (64 KiB). Larger content should arrive as a file part.
const DefaultTextLimit int64 = 64 << 10

// Option configures a Source.
type Option func(*Source)

// WithTextLimit overrides the in-memory limit for text parts.
func WithTextLimit(limit int64) Option {
	return func(s *Source) {
		if limit > 0 {
			s.textLimit = limit
		}
	}
}

// Source yields the fields of one multipart stream in delivery order,
// implementing save.Source over a mime/multipart.Reader.
type Source struct {
	mr        *multipart.Reader
	textLimit int64
	pending   bool // a file field's body still owns the stream
}

// NewSource wraps an existing multipart reader.
func NewSource(mr *multipart.Reader, opts ...Option) *Source {
	s := &Source{mr: mr, textLimit: DefaultTextLimit}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FromRequest builds a Source from an HTTP request, validating the
// content type and boundary parameter.
func FromRequest(r *http.Request, opts ...Option) (*Source, error) {
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotMultipart, err)
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		return nil, fmt.Errorf("%w: got %s", ErrNotMultipart, mediaType)
	}
	boundary, ok := params["boundary"]
	if !ok || boundary == "" {
		return nil, ErrMissingBoundary
	}
	return NewSource(multipart.NewReader(r.Body, boundary), opts...), nil
}

// Next returns the next field, or io.EOF once the stream is exhausted.
// It refuses to advance while a previous file field's body has not been
// released back to the source.
func (s *Source) Next() (*save.Field, error) {
	if s.pending {
		return nil, ErrFieldNotReleased
	}

	part, err := s.mr.NextPart()
	if err != nil {
		// io.EOF passes through as the end-of-stream marker.
		return nil, err
	}

	headers := save.FieldHeaders{
		Name:        part.FormName(),
		Filename:    part.FileName(),
		ContentType: part.Header.Get("Content-Type"),
	}

	if isFilePart(part) {
		s.pending = true
		body := bufio.NewReader(part)
		return save.FileField(headers, body, func() { s.pending = false }), nil
	}

	text, err := s.readText(part)
	if err != nil {
		return nil, err
	}
	return save.TextField(headers, text), nil
}

// readText drains a text part into memory, bounded by the text limit.
func (s *Source) readText(part *multipart.Part) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(part, s.textLimit+1))
	if err != nil {
		return "", err
	}
	if int64(len(raw)) > s.textLimit {
		return "", fmt.Errorf("%w: %q", ErrTextFieldTooLarge, part.FormName())
	}
	return string(raw), nil
}

// isFilePart reports whether a part carries a byte stream rather than
// text: anything with a filename, or with a declared non-text media type.
func isFilePart(part *multipart.Part) bool {
	if part.FileName() != "" {
		return true
	}
	ct := part.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return true
	}
	return !strings.HasPrefix(mediaType, "text/")
}
