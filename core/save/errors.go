package save

import "errors"

// Error variables define the failure conditions of the save pipeline that
// are not ordinary I/O errors surfaced from the operating system.
var (
	// ErrInvalidText indicates a field resolved in memory under the Force
	// text policy whose content is not valid UTF-8.
	ErrInvalidText = errors.New("field content is not valid UTF-8")

	// ErrNilBody indicates a file-field save was attempted with a nil body.
	ErrNilBody = errors.New("nil field body")

	// ErrNilSource indicates a whole-request save was attempted with a nil
	// field source.
	ErrNilSource = errors.New("nil field source")

	// ErrUnknownTextPolicy indicates a configuration value that does not
	// name one of the supported text policies.
	ErrUnknownTextPolicy = errors.New("unknown text policy")
)
