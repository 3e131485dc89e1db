package form

import "errors"

var (
	// ErrNotMultipart indicates the request's content type is not
	// multipart/form-data.
	ErrNotMultipart = errors.New("content type is not multipart/form-data")

	// ErrMissingBoundary indicates a multipart content type without a
	// usable boundary parameter.
	ErrMissingBoundary = errors.New("missing boundary in content type")

	// ErrFieldNotReleased indicates the source was asked for the next
	// field while the previous file field's body still owned the stream.
	ErrFieldNotReleased = errors.New("previous file field was not released")

	// ErrTextFieldTooLarge indicates a text part exceeded the in-memory
	// text limit; oversized content belongs in a file part.
	ErrTextFieldTooLarge = errors.New("text field exceeds in-memory limit")
)
