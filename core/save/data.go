package save

import (
	"bytes"
	"io"
	"os"
	"strings"
)

// DataKind discriminates the storage form of a saved field.
type DataKind int

const (
	// DataText is UTF-8 content held in memory as a string.
	DataText DataKind = iota
	// DataBytes is opaque content held in memory.
	DataBytes
	// DataFile is content persisted to the filesystem.
	DataFile
)

// String implements fmt.Stringer.
func (k DataKind) String() string {
	switch k {
	case DataText:
		return "text"
	case DataBytes:
		return "bytes"
	default:
		return "file"
	}
}

// SavedData is the resolved storage form of one field's content: text or
// bytes in memory, or a file on disk with its size as written.
type SavedData struct {
	kind DataKind
	text string
	raw  []byte
	path string
	size int64
}

// TextData wraps an in-memory text payload.
func TextData(text string) SavedData {
	return SavedData{kind: DataText, text: text}
}

// BytesData wraps an in-memory byte payload.
func BytesData(raw []byte) SavedData {
	return SavedData{kind: DataBytes, raw: raw}
}

// FileData wraps a filesystem payload with the number of bytes written.
func FileData(path string, size int64) SavedData {
	return SavedData{kind: DataFile, path: path, size: size}
}

// Kind reports the storage form.
func (d SavedData) Kind() DataKind { return d.kind }

// Text returns the text payload; ok is false for other kinds.
func (d SavedData) Text() (string, bool) {
	return d.text, d.kind == DataText
}

// Bytes returns the byte payload; ok is false for other kinds.
func (d SavedData) Bytes() ([]byte, bool) {
	return d.raw, d.kind == DataBytes
}

// File returns the path and written size; ok is false for in-memory kinds.
func (d SavedData) File() (string, int64, bool) {
	return d.path, d.size, d.kind == DataFile
}

// InMemory reports whether the content never touched the filesystem.
func (d SavedData) InMemory() bool { return d.kind != DataFile }

// Size returns the content length in bytes regardless of storage form.
func (d SavedData) Size() int64 {
	switch d.kind {
	case DataText:
		return int64(len(d.text))
	case DataBytes:
		return int64(len(d.raw))
	default:
		return d.size
	}
}

// Reader opens the content for streaming back out, re-opening the backing
// file for the DataFile kind.
func (d SavedData) Reader() (io.ReadCloser, error) {
	switch d.kind {
	case DataText:
		return io.NopCloser(strings.NewReader(d.text)), nil
	case DataBytes:
		return io.NopCloser(bytes.NewReader(d.raw)), nil
	default:
		return os.Open(d.path)
	}
}

// addSize grows a file payload's written size; in-memory payloads are
// returned unchanged.
func (d SavedData) addSize(n int64) SavedData {
	if d.kind == DataFile {
		d.size += n
	}
	return d
}

// SavedField is one persisted record: the field's headers plus its data,
// which may reside in memory or on the filesystem.
type SavedField struct {
	Headers FieldHeaders
	Data    SavedData
}
