package save_test

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/partsave/core/save"
)

// sliceSource replays a fixed field sequence, then io.EOF or an injected
// failure.
type sliceSource struct {
	fields []*save.Field
	err    error
}

func (s *sliceSource) Next() (*save.Field, error) {
	if len(s.fields) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	f := s.fields[0]
	s.fields = s.fields[1:]
	return f, nil
}

func textField(name, text string) *save.Field {
	return save.TextField(save.FieldHeaders{Name: name}, text)
}

func fileField(name, filename string, content []byte) *save.Field {
	return save.FileField(
		save.FieldHeaders{Name: name, Filename: filename, ContentType: "application/octet-stream"},
		bufio.NewReader(bytes.NewReader(content)),
		nil,
	)
}

func TestWithEntriesNoLimits(t *testing.T) {
	t.Parallel()

	src := &sliceSource{fields: []*save.Field{
		textField("bio", "gopher"),
		fileField("docs", "a.bin", []byte("first")),
		fileField("docs", "b.bin", []byte("second")),
		textField("city", "kyiv"),
	}}

	res := save.New().Temp(src)
	require.Equal(t, save.StatusFull, res.Status())
	entries, ok := res.Entries()
	require.True(t, ok)
	t.Cleanup(func() { _ = entries.Close() })

	assert.Len(t, entries.Fields, 3)

	bio := entries.Fields["bio"]
	require.Len(t, bio, 1)
	text, _ := bio[0].Data.Text()
	assert.Equal(t, "gopher", text)

	// Records within one field name keep arrival order.
	docs := entries.Fields["docs"]
	require.Len(t, docs, 2)
	assert.Equal(t, "a.bin", docs[0].Headers.Filename)
	assert.Equal(t, "b.bin", docs[1].Headers.Filename)
	first, _ := docs[0].Data.Text()
	second, _ := docs[1].Data.Text()
	assert.Equal(t, "first", first)
	assert.Equal(t, "second", second)
}

func TestWithEntriesEmptyRequest(t *testing.T) {
	t.Parallel()

	res := save.New().Temp(&sliceSource{})
	require.Equal(t, save.StatusFull, res.Status())
	entries, _ := res.Entries()
	t.Cleanup(func() { _ = entries.Close() })
	assert.True(t, entries.IsEmpty())
}

func TestWithEntriesNilSource(t *testing.T) {
	t.Parallel()

	res := save.New().WithEntries(nil, save.NewEntries(nil))
	require.Equal(t, save.StatusError, res.Status())
	assert.ErrorIs(t, res.Err(), save.ErrNilSource)
}

func TestWithEntriesSizeLimitTruncates(t *testing.T) {
	t.Parallel()

	content := []byte("0123456789abcdef")
	src := &sliceSource{fields: []*save.Field{
		fileField("upload", "big.bin", content),
	}}

	res := save.New().SizeLimit(10).Temp(src)
	require.Equal(t, save.StatusPartial, res.Status())
	partial, reason, ok := res.Partial()
	require.True(t, ok)
	assert.Equal(t, save.ReasonSizeLimit, reason.Kind)
	t.Cleanup(func() { _ = partial.Entries.Close() })

	// Exactly the limit was persisted.
	require.NotNil(t, partial.PartialField)
	require.NotNil(t, partial.PartialField.Dest)
	assert.Equal(t, int64(10), partial.PartialField.Dest.Data.Size())
	b, _ := partial.PartialField.Dest.Data.Bytes()
	assert.Equal(t, content[:10], b)

	// The remainder is still on the field body.
	rest, err := io.ReadAll(partial.PartialField.Source.Body)
	require.NoError(t, err)
	assert.Equal(t, content[10:], rest)
}

func TestWithEntriesSizeLimitAtOrAboveSizeIsFull(t *testing.T) {
	t.Parallel()

	for _, limit := range []int64{16, 32} {
		src := &sliceSource{fields: []*save.Field{
			fileField("upload", "ok.bin", []byte("0123456789abcdef")),
		}}

		res := save.New().SizeLimit(limit).Temp(src)
		require.Equal(t, save.StatusFull, res.Status())
		entries, _ := res.Entries()
		assert.Equal(t, int64(16), entries.Fields["upload"][0].Data.Size())
		_ = entries.Close()
	}
}

func TestWithEntriesSizeLimitIgnoresTextFields(t *testing.T) {
	t.Parallel()

	src := &sliceSource{fields: []*save.Field{
		textField("bio", "a text field well over the configured byte limit"),
	}}

	res := save.New().SizeLimit(4).Temp(src)
	require.Equal(t, save.StatusFull, res.Status())
	entries, _ := res.Entries()
	t.Cleanup(func() { _ = entries.Close() })
	text, _ := entries.Fields["bio"][0].Data.Text()
	assert.Equal(t, "a text field well over the configured byte limit", text)
}

func TestWithEntriesCountLimitLeavesBodyUnconsumed(t *testing.T) {
	t.Parallel()

	over := []byte("must remain unread")
	src := &sliceSource{fields: []*save.Field{
		fileField("docs", "a.bin", []byte("saved")),
		fileField("docs", "b.bin", over),
	}}

	res := save.New().CountLimit(1).Temp(src)
	require.Equal(t, save.StatusPartial, res.Status())
	partial, reason, _ := res.Partial()
	assert.Equal(t, save.ReasonCountLimit, reason.Kind)
	t.Cleanup(func() { _ = partial.Entries.Close() })

	require.Len(t, partial.Entries.Fields["docs"], 1)

	// The over-limit field reached no destination and its body is whole.
	require.NotNil(t, partial.PartialField)
	assert.Nil(t, partial.PartialField.Dest)
	body, err := io.ReadAll(partial.PartialField.Source.Body)
	require.NoError(t, err)
	assert.Equal(t, over, body)
}

func TestWithEntriesCountLimitIgnoresTextFields(t *testing.T) {
	t.Parallel()

	src := &sliceSource{fields: []*save.Field{
		textField("a", "1"),
		textField("b", "2"),
		fileField("docs", "a.bin", []byte("saved")),
	}}

	res := save.New().CountLimit(1).Temp(src)
	require.Equal(t, save.StatusFull, res.Status())
	entries, _ := res.Entries()
	t.Cleanup(func() { _ = entries.Close() })
	assert.Len(t, entries.Fields, 3)
}

func TestWithEntriesSourceFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	src := &sliceSource{
		fields: []*save.Field{textField("bio", "gopher")},
		err:    boom,
	}

	res := save.New().Temp(src)
	require.Equal(t, save.StatusPartial, res.Status())
	partial, reason, _ := res.Partial()
	t.Cleanup(func() { _ = partial.Entries.Close() })

	assert.Equal(t, save.ReasonIOError, reason.Kind)
	assert.ErrorIs(t, reason.Err, boom)
	// The failure hit between fields; nothing was in flight.
	assert.Nil(t, partial.PartialField)
	assert.Len(t, partial.Entries.Fields, 1)
}

func TestMemoryThresholdKeepsSmallFieldsInMemory(t *testing.T) {
	t.Parallel()

	content := bytes.Repeat([]byte("x"), 64)
	src := &sliceSource{fields: []*save.Field{
		fileField("upload", "small.bin", content),
	}}

	dir := t.TempDir()
	res := save.New().MemoryThreshold(64).IgnoreText().WithDir(src, dir)
	require.Equal(t, save.StatusFull, res.Status())
	entries, _ := res.Entries()

	data := entries.Fields["upload"][0].Data
	assert.True(t, data.InMemory())
	assert.Equal(t, save.DataBytes, data.Kind())
	assert.Equal(t, int64(64), data.Size())

	// Nothing reached the save directory.
	names, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMemoryThresholdSpillsLargeFieldsToDisk(t *testing.T) {
	t.Parallel()

	content := bytes.Repeat([]byte("y"), 65)
	src := &sliceSource{fields: []*save.Field{
		fileField("upload", "big.bin", content),
	}}

	res := save.New().MemoryThreshold(64).WithDir(src, t.TempDir())
	require.Equal(t, save.StatusFull, res.Status())
	entries, _ := res.Entries()

	data := entries.Fields["upload"][0].Data
	assert.False(t, data.InMemory())
	assert.Equal(t, save.DataFile, data.Kind())
	path, size, _ := data.File()
	assert.Equal(t, int64(65), size)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, onDisk)
}

func TestMemoryThresholdZeroForcesDisk(t *testing.T) {
	t.Parallel()

	src := &sliceSource{fields: []*save.Field{
		fileField("upload", "tiny.bin", []byte("z")),
	}}

	res := save.New().MemoryThreshold(0).WithDir(src, t.TempDir())
	require.Equal(t, save.StatusFull, res.Status())
	entries, _ := res.Entries()
	assert.Equal(t, save.DataFile, entries.Fields["upload"][0].Data.Kind())
}

func TestTextPolicies(t *testing.T) {
	t.Parallel()

	valid := []byte("caf\xc3\xa9")
	invalid := []byte{0xff, 0xfe, 0xfd}

	t.Run("try decodes valid utf8", func(t *testing.T) {
		t.Parallel()
		res := save.New().FieldTemp(bufio.NewReader(bytes.NewReader(valid)))
		require.Equal(t, save.StatusFull, res.Status())
		data, _ := res.Value()
		text, ok := data.Text()
		require.True(t, ok)
		assert.Equal(t, "café", text)
	})

	t.Run("try falls back to bytes", func(t *testing.T) {
		t.Parallel()
		res := save.New().FieldTemp(bufio.NewReader(bytes.NewReader(invalid)))
		require.Equal(t, save.StatusFull, res.Status())
		data, _ := res.Value()
		assert.Equal(t, save.DataBytes, data.Kind())
	})

	t.Run("force rejects invalid utf8", func(t *testing.T) {
		t.Parallel()
		res := save.New().ForceText().FieldTemp(bufio.NewReader(bytes.NewReader(invalid)))
		require.Equal(t, save.StatusError, res.Status())
		assert.ErrorIs(t, res.Err(), save.ErrInvalidText)
	})

	t.Run("ignore never decodes", func(t *testing.T) {
		t.Parallel()
		res := save.New().IgnoreText().FieldTemp(bufio.NewReader(bytes.NewReader(valid)))
		require.Equal(t, save.StatusFull, res.Status())
		data, _ := res.Value()
		assert.Equal(t, save.DataBytes, data.Kind())
	})
}

func TestFieldWithPathFailsIfExists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "taken")
	require.NoError(t, os.WriteFile(path, []byte("existing"), 0o600))

	b := save.New().MemoryThreshold(0)
	res := b.FieldWithPath(bufio.NewReader(bytes.NewReader([]byte("new"))), path)
	require.Equal(t, save.StatusError, res.Status())
	assert.ErrorIs(t, res.Err(), os.ErrExist)
}

func TestFieldWithPathOverwriteViaOpenFlags(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "taken")
	require.NoError(t, os.WriteFile(path, []byte("existing"), 0o600))

	b := save.New().MemoryThreshold(0).OpenFlags(os.O_CREATE | os.O_TRUNC)
	res := b.FieldWithPath(bufio.NewReader(bytes.NewReader([]byte("new"))), path)
	require.Equal(t, save.StatusFull, res.Status())

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), onDisk)
}

func TestFieldWithPathCreatesParents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "deep", "file.bin")
	res := save.New().MemoryThreshold(0).FieldWithPath(
		bufio.NewReader(bytes.NewReader([]byte("content"))), path)
	require.Equal(t, save.StatusFull, res.Status())

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), onDisk)
}

func TestFieldWithPathNilBody(t *testing.T) {
	t.Parallel()

	res := save.New().FieldWithPath(nil, "/tmp/whatever")
	require.Equal(t, save.StatusError, res.Status())
	assert.ErrorIs(t, res.Err(), save.ErrNilBody)
}

func TestFieldWithPathSizeLimitBelowThreshold(t *testing.T) {
	t.Parallel()

	// The limit undercuts the threshold, so a truncated field never
	// touches disk.
	body := bufio.NewReader(bytes.NewReader(bytes.Repeat([]byte("a"), 100)))
	path := filepath.Join(t.TempDir(), "never-created")

	res := save.New().SizeLimit(10).FieldWithPath(body, path)
	require.Equal(t, save.StatusPartial, res.Status())
	data, _ := res.Value()
	reason, _ := res.Reason()
	assert.Equal(t, save.ReasonSizeLimit, reason.Kind)
	assert.Equal(t, save.DataBytes, data.Kind())
	assert.Equal(t, int64(10), data.Size())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFieldWithPathSizeLimitAfterSpill(t *testing.T) {
	t.Parallel()

	// 100-byte limit with a 40-byte threshold: the buffered bytes count
	// against the limit, so exactly 100 bytes land on disk.
	body := bufio.NewReader(bytes.NewReader(bytes.Repeat([]byte("b"), 150)))
	path := filepath.Join(t.TempDir(), "spilled")

	res := save.New().SizeLimit(100).MemoryThreshold(40).FieldWithPath(body, path)
	require.Equal(t, save.StatusPartial, res.Status())
	data, _ := res.Value()
	reason, _ := res.Reason()
	assert.Equal(t, save.ReasonSizeLimit, reason.Kind)
	assert.Equal(t, save.DataFile, data.Kind())
	assert.Equal(t, int64(100), data.Size())

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, onDisk, 100)
}

func TestWriteTo(t *testing.T) {
	t.Parallel()

	var dst bytes.Buffer
	res := save.New().WriteTo(bufio.NewReader(bytes.NewReader([]byte("payload"))), &dst)
	require.Equal(t, save.StatusFull, res.Status())
	n, _ := res.Value()
	assert.Equal(t, int64(7), n)
	assert.Equal(t, "payload", dst.String())

	dst.Reset()
	res = save.New().SizeLimit(4).WriteTo(bufio.NewReader(bytes.NewReader([]byte("payload"))), &dst)
	require.Equal(t, save.StatusPartial, res.Status())
	reason, _ := res.Reason()
	assert.Equal(t, save.ReasonSizeLimit, reason.Kind)
	assert.Equal(t, "payl", dst.String())

	res = save.New().WriteTo(nil, &dst)
	require.Equal(t, save.StatusError, res.Status())
	assert.ErrorIs(t, res.Err(), save.ErrNilBody)
}

func TestBuilderValueSemantics(t *testing.T) {
	t.Parallel()

	base := save.New().SizeLimit(100)
	strict := base.CountLimit(1)

	// Forking off strict must not have touched base.
	src := &sliceSource{fields: []*save.Field{
		fileField("docs", "a.bin", []byte("one")),
		fileField("docs", "b.bin", []byte("two")),
	}}
	res := base.Temp(src)
	require.Equal(t, save.StatusFull, res.Status())
	entries, _ := res.Entries()
	t.Cleanup(func() { _ = entries.Close() })
	assert.Len(t, entries.Fields["docs"], 2)

	src = &sliceSource{fields: []*save.Field{
		fileField("docs", "a.bin", []byte("one")),
		fileField("docs", "b.bin", []byte("two")),
	}}
	res = strict.Temp(src)
	require.Equal(t, save.StatusPartial, res.Status())
	partial, _, _ := res.Partial()
	_ = partial.Entries.Close()
}

func TestProfileUploadScenario(t *testing.T) {
	t.Parallel()

	avatar := make([]byte, 2_000_000)
	for i := range avatar {
		avatar[i] = byte(i % 251)
	}
	src := &sliceSource{fields: []*save.Field{
		textField("bio", "staff engineer, remote"),
		save.FileField(
			save.FieldHeaders{Name: "avatar", Filename: "me.png", ContentType: "image/png"},
			bufio.NewReader(bytes.NewReader(avatar)),
			nil,
		),
	}}

	res := save.New().MemoryThreshold(800_000).Temp(src)
	require.Equal(t, save.StatusFull, res.Status())
	entries, _ := res.Entries()
	t.Cleanup(func() { _ = entries.Close() })

	bio := entries.Fields["bio"][0]
	assert.True(t, bio.Data.InMemory())

	saved := entries.Fields["avatar"][0]
	assert.Equal(t, save.DataFile, saved.Data.Kind())
	assert.Equal(t, "image/png", saved.Headers.ContentType)
	path, size, _ := saved.Data.File()
	assert.Equal(t, int64(2_000_000), size)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, avatar, onDisk)
}

func TestWithEntriesResume(t *testing.T) {
	t.Parallel()

	src := &sliceSource{fields: []*save.Field{
		fileField("docs", "a.bin", []byte("one")),
		fileField("docs", "b.bin", []byte("two")),
	}}

	res := save.New().CountLimit(1).Temp(src)
	require.Equal(t, save.StatusPartial, res.Status())
	partial, _, _ := res.Partial()
	entries := partial.Entries
	t.Cleanup(func() { _ = entries.Close() })

	// Feed the untouched field back in with the limit lifted.
	resume := &sliceSource{fields: []*save.Field{partial.PartialField.Source}}
	res = save.New().WithEntries(resume, entries)
	require.Equal(t, save.StatusFull, res.Status())
	got, _ := res.Entries()
	require.Len(t, got.Fields["docs"], 2)
	one, _ := got.Fields["docs"][0].Data.Text()
	two, _ := got.Fields["docs"][1].Data.Text()
	assert.Equal(t, "one", one)
	assert.Equal(t, "two", two)
}
