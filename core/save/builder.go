package save

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/dmitrymomot/partsave/pkg/randomname"
)

// DefaultMemoryThreshold is the byte cutoff below which field content
// stays in memory (8 MiB).
const DefaultMemoryThreshold int64 = 8 << 20

// tempPrefix names the temporary directories created by Temp.
const tempPrefix = "partsave"

// TextPolicy controls whether fields that resolve fully in memory are
// decoded as UTF-8 text.
type TextPolicy int

const (
	// TextTry decodes valid UTF-8 as text and keeps bytes otherwise.
	TextTry TextPolicy = iota
	// TextForce decodes valid UTF-8 as text and errors otherwise.
	TextForce
	// TextIgnore never decodes.
	TextIgnore
)

// Builder holds the configuration for saving fields to memory or the
// filesystem. It has value semantics: every setter returns a copy with
// that option applied and the others unchanged, so a builder can be shared
// and forked freely across fields and requests.
//
// Destination files are opened with os.O_WRONLY|os.O_CREATE|os.O_EXCL by
// default, so saving fails if the file already exists. This avoids
// accidentally overwriting files from other requests; use OpenFlags to
// change it.
type Builder struct {
	sizeLimit       int64
	countLimit      int
	memoryThreshold int64
	textPolicy      TextPolicy
	openFlags       int
	fileMode        os.FileMode
	log             *slog.Logger
}

// New returns a builder with the default configuration: no size or count
// limits, an 8 MiB memory threshold, the TryText policy, and
// fail-if-exists file creation.
func New() Builder {
	return Builder{
		memoryThreshold: DefaultMemoryThreshold,
		textPolicy:      TextTry,
		openFlags:       os.O_WRONLY | os.O_CREATE | os.O_EXCL,
		fileMode:        0o600,
	}
}

// SizeLimit sets the maximum number of bytes persisted per file field.
// Exceeding it yields a Partial result with the SizeLimit reason, not an
// error. Non-positive clears the limit.
func (b Builder) SizeLimit(limit int64) Builder {
	if limit < 0 {
		limit = 0
	}
	b.sizeLimit = limit
	return b
}

// CountLimit sets the maximum number of file fields processed per request.
// The field exceeding it is left completely unread. Non-positive clears
// the limit.
func (b Builder) CountLimit(limit int) Builder {
	if limit < 0 {
		limit = 0
	}
	b.countLimit = limit
	return b
}

// MemoryThreshold sets the byte cutoff below which content stays in
// memory. Zero forces every field directly to the filesystem.
func (b Builder) MemoryThreshold(threshold int64) Builder {
	if threshold < 0 {
		threshold = 0
	}
	b.memoryThreshold = threshold
	return b
}

// TryText decodes in-memory fields as UTF-8 when possible, falling back to
// bytes otherwise. This is the default.
func (b Builder) TryText() Builder {
	b.textPolicy = TextTry
	return b
}

// ForceText decodes in-memory fields as UTF-8 or fails with
// ErrInvalidText. Content that spills to disk is not validated.
func (b Builder) ForceText() Builder {
	b.textPolicy = TextForce
	return b
}

// IgnoreText never decodes field data as UTF-8.
func (b Builder) IgnoreText() Builder {
	b.textPolicy = TextIgnore
	return b
}

// OpenFlags replaces the flags used to open destination files. A write
// mode is reinstated if the given flags carry none; it would be pretty
// pointless otherwise.
func (b Builder) OpenFlags(flags int) Builder {
	if flags&(os.O_WRONLY|os.O_RDWR) == 0 {
		flags |= os.O_WRONLY
	}
	b.openFlags = flags
	return b
}

// FileMode sets the permission bits for created destination files
// (default 0600).
func (b Builder) FileMode(mode os.FileMode) Builder {
	b.fileMode = mode
	return b
}

// Logger attaches a logger for debug-level save events. Nil disables
// logging, which is the default.
func (b Builder) Logger(log *slog.Logger) Builder {
	b.log = log
	return b
}

func (b Builder) debug(msg string, args ...any) {
	if b.log != nil {
		b.log.Debug(msg, args...)
	}
}

// Temp saves the request's fields to a new temporary directory in the OS
// temporary directory. The directory is removed when the resulting
// Entries is closed unless its SaveDir is kept.
func (b Builder) Temp(src Source) EntriesResult {
	return b.TempWithPrefix(src, tempPrefix)
}

// TempWithPrefix is Temp with a caller-chosen directory name prefix.
func (b Builder) TempWithPrefix(src Source, prefix string) EntriesResult {
	dir, err := NewTempDir(prefix)
	if err != nil {
		return ErroredEntries(err)
	}
	return b.WithTempDir(src, dir)
}

// WithTempDir saves the request's fields to an existing save directory,
// typically from NewTempDir. The directory is returned in the result
// under Entries.Dir.
func (b Builder) WithTempDir(src Source, dir *SaveDir) EntriesResult {
	return b.WithEntries(src, NewEntries(dir))
}

// WithDir saves the request's fields to a permanent directory at the
// given path, creating any missing directories.
func (b Builder) WithDir(src Source, dir string) EntriesResult {
	sd, err := NewPermDir(dir)
	if err != nil {
		return ErroredEntries(err)
	}
	return b.WithEntries(src, NewEntries(sd))
}

// WithEntries commences the save operation using an existing Entries
// instance. It may be used to resume a save after handling a partial
// result.
//
// Fields are pulled one at a time and processed strictly in delivery
// order; within one field name, saved records append in arrival order.
// The result is Full on stream exhaustion and Partial on any limit or
// failure, carrying everything saved so far.
func (b Builder) WithEntries(src Source, entries *Entries) EntriesResult {
	if src == nil {
		return ErroredEntries(ErrNilSource)
	}

	count := 0
	for {
		field, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				b.debug("request saved",
					slog.Int("field_names", len(entries.Fields)),
					slog.Int("files_saved", count))
				return FullEntries(entries)
			}
			// The field source itself failed; no field was individually
			// processed.
			return PartialSave(&PartialEntries{Entries: entries}, IOErrorReason(err))
		}

		if !field.IsFile() {
			entries.push(field.Headers.Name, SavedField{
				Headers: field.Headers,
				Data:    TextData(field.Text),
			})
			field.Release()
			continue
		}

		if b.countLimit > 0 && count >= b.countLimit {
			// Stop before touching this field's body; it is left
			// completely unconsumed for the caller.
			b.debug("count limit reached",
				slog.String("field", field.Headers.Name),
				slog.Int("limit", b.countLimit))
			return PartialSave(&PartialEntries{
				Entries:      entries,
				PartialField: &PartialSavedField{Source: field},
			}, CountLimitReason())
		}
		count++

		res := b.FieldWithDir(field.Body, entries.Dir.Path())
		switch res.Status() {
		case StatusFull:
			data, _ := res.Value()
			entries.push(field.Headers.Name, SavedField{
				Headers: field.Headers,
				Data:    data,
			})
			field.Release()

		case StatusPartial:
			data, _ := res.Value()
			reason, _ := res.Reason()
			b.debug("field partially saved",
				slog.String("field", field.Headers.Name),
				slog.String("reason", reason.String()),
				slog.Int64("bytes", data.Size()))
			return PartialSave(&PartialEntries{
				Entries: entries,
				PartialField: &PartialSavedField{
					Source: field,
					Dest:   &SavedField{Headers: field.Headers, Data: data},
				},
			}, reason)

		default:
			return PartialSave(&PartialEntries{
				Entries:      entries,
				PartialField: &PartialSavedField{Source: field},
			}, IOErrorReason(res.Err()))
		}
	}
}

// FieldTemp saves a single field body, potentially using a randomly named
// file in the OS temporary directory. See FieldWithPath.
func (b Builder) FieldTemp(body BufferedReader) SaveResult[SavedData] {
	return b.FieldWithPath(body, filepath.Join(os.TempDir(), randomname.Filename()))
}

// FieldWithFilename saves a single field body, potentially using a file
// with the given name in the OS temporary directory. See FieldWithPath.
func (b Builder) FieldWithFilename(body BufferedReader, filename string) SaveResult[SavedData] {
	return b.FieldWithPath(body, filepath.Join(os.TempDir(), filename))
}

// FieldWithDir saves a single field body, potentially using a randomly
// named file in the given directory. See FieldWithPath.
func (b Builder) FieldWithDir(body BufferedReader, dir string) SaveResult[SavedData] {
	return b.FieldWithPath(body, filepath.Join(dir, randomname.Filename()))
}

// FieldWithPath saves a single field body, potentially using a file at the
// given path. No file is created unless the memory threshold is exceeded;
// on spill, missing parent directories are created and the file is opened
// with the configured flags and mode. The size limit, if set, truncates
// the field and yields a Partial result with the SizeLimit reason.
func (b Builder) FieldWithPath(body BufferedReader, path string) SaveResult[SavedData] {
	if body == nil {
		return Errored[SavedData](ErrNilBody)
	}

	// Phase 1: buffer into memory.
	res, inMemory := b.saveMemory(body)
	if res.Status() == StatusError {
		return Errored[SavedData](res.Err())
	}
	buf, _ := res.Value()
	if reason, ok := res.Reason(); ok {
		// A limit or failure during buffering propagates unchanged; this
		// field never touches disk.
		return Partial(BytesData(buf), reason)
	}

	if inMemory {
		// Phase 2a: resolve in memory under the text policy.
		switch b.textPolicy {
		case TextTry:
			if utf8.Valid(buf) {
				return Full(TextData(string(buf)))
			}
		case TextForce:
			if utf8.Valid(buf) {
				return Full(TextData(string(buf)))
			}
			return Errored[SavedData](ErrInvalidText)
		}
		return Full(BytesData(buf))
	}

	// Phase 2b: spill to disk. Text decoding is not retried once spill is
	// determined; content that did not fit the threshold is opaque bytes.
	if err := mkdirParents(path); err != nil {
		return Errored[SavedData](err)
	}
	file, err := os.OpenFile(path, b.openFlags, b.fileMode)
	if err != nil {
		return Errored[SavedData](err)
	}
	defer func() { _ = file.Close() }()

	b.debug("field spilled to disk",
		slog.String("path", path),
		slog.Int("buffered", len(buf)))

	wres := writeAll(file, buf)
	written, _ := wres.Value()
	data := FileData(path, int64(written))
	switch wres.Status() {
	case StatusPartial:
		reason, _ := wres.Reason()
		return Partial(data, reason)
	case StatusError:
		return Errored[SavedData](wres.Err())
	}

	// Continue copying directly from the stream, charging the buffered
	// bytes against the size limit.
	var cres SaveResult[int64]
	if b.sizeLimit > 0 {
		cres = copyLimited(body, file, b.sizeLimit-int64(written))
	} else {
		cres = copyBuffered(body, file)
	}
	switch cres.Status() {
	case StatusFull:
		n, _ := cres.Value()
		return Full(data.addSize(n))
	case StatusPartial:
		n, _ := cres.Value()
		reason, _ := cres.Reason()
		return Partial(data.addSize(n), reason)
	default:
		// The destination already holds the buffered bytes, so a stream
		// failure here is a partial save, not a bare error.
		return Partial(data, IOErrorReason(cres.Err()))
	}
}

// WriteTo copies the field body to dst, truncating at the configured size
// limit. The accumulated byte count is returned alongside the outcome
// even on failure.
func (b Builder) WriteTo(body BufferedReader, dst io.Writer) SaveResult[int64] {
	if body == nil {
		return Errored[int64](ErrNilBody)
	}
	if b.sizeLimit > 0 {
		return copyLimited(body, dst, b.sizeLimit)
	}
	return copyBuffered(body, dst)
}

// saveMemory runs phase 1 of the classifier: copy the field into a memory
// buffer, bounded by the size limit when it undercuts the memory
// threshold, and by the threshold otherwise. The bool reports whether the
// field must be resolved in memory: either it ended within the threshold,
// or the size limit guarantees it will never reach disk.
func (b Builder) saveMemory(body BufferedReader) (SaveResult[[]byte], bool) {
	var buf bytes.Buffer

	if b.sizeLimit > 0 && b.sizeLimit < b.memoryThreshold {
		res := copyLimited(body, &buf, b.sizeLimit)
		return Map(res, func(int64) []byte { return buf.Bytes() }), true
	}

	res := copyLimited(body, &buf, b.memoryThreshold)
	switch res.Status() {
	case StatusFull:
		// The field ended within the threshold.
		return Full(buf.Bytes()), true
	case StatusPartial:
		reason, _ := res.Reason()
		if reason.Kind == ReasonSizeLimit {
			// Exactly threshold bytes copied with more unread: spill.
			return Full(buf.Bytes()), false
		}
		return Partial(buf.Bytes(), reason), true
	default:
		return Errored[[]byte](res.Err()), true
	}
}

// mkdirParents creates the missing parent directories of path.
func mkdirParents(path string) error {
	parent := filepath.Dir(path)
	if parent == "" || parent == "." {
		return nil
	}
	return os.MkdirAll(parent, 0o755)
}
