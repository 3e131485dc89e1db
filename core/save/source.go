package save

import "io"

// BufferedReader is the buffered-read capability a file field's body must
// provide: fill an internal buffer without consuming, then consume
// explicitly. *bufio.Reader satisfies it.
type BufferedReader interface {
	io.Reader

	// Peek returns the next n bytes without consuming them.
	Peek(n int) ([]byte, error)

	// Discard consumes the next n bytes, returning the number discarded.
	Discard(n int) (int, error)

	// Buffered returns the number of bytes held in the internal buffer.
	Buffered() int
}

// FieldHeaders carries the identifying headers of one multipart field.
type FieldHeaders struct {
	// Name is the field name from the Content-Disposition header.
	Name string

	// Filename is the client-supplied file name, empty for text fields.
	// It is untrusted input; never use it as a filesystem path without
	// sanitizing.
	Filename string

	// ContentType is the declared media type, empty when absent.
	ContentType string
}

// Field is one named part of a multipart request: headers plus either
// already-decoded text or a file-like byte stream.
type Field struct {
	Headers FieldHeaders

	// Text holds the content of a text field. Valid only when IsFile
	// reports false.
	Text string

	// Body streams a file field's content. Nil for text fields.
	Body BufferedReader

	release func()
}

// TextField builds an already-decoded text field.
func TextField(headers FieldHeaders, text string) *Field {
	return &Field{Headers: headers, Text: text}
}

// FileField builds a file field. The release callback, if non-nil, hands
// ownership of the underlying stream back to the source so it can yield
// subsequent fields; the orchestrator calls it once the field is resolved.
func FileField(headers FieldHeaders, body BufferedReader, release func()) *Field {
	return &Field{Headers: headers, Body: body, release: release}
}

// IsFile reports whether the field carries a byte stream rather than
// already-decoded text.
func (f *Field) IsFile() bool { return f.Body != nil }

// Release gives ownership of the underlying stream back to the source.
// The body must not be read afterwards. Safe to call on text fields and
// more than once.
func (f *Field) Release() {
	if f.release != nil {
		f.release()
		f.release = nil
	}
}

// Source yields the fields of one multipart request in delivery order.
// Implementations own the underlying connection; a file field's body must
// be released before the source is asked for the next field.
type Source interface {
	// Next returns the next field, or io.EOF once the request is
	// exhausted. Any other error means the source itself failed.
	Next() (*Field, error)
}
