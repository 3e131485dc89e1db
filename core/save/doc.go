// Package save persists the fields of a parsed multipart request to memory
// or the filesystem under configurable byte and count limits, with an
// explicit partial-success model.
//
// Each field is either short text or an arbitrarily large file stream. File
// fields are buffered in memory up to a configurable threshold and spill to
// disk beyond it; the storage decision is made late, per field, so small
// uploads never touch the filesystem. Every fallible step returns one of
// exactly three outcomes - Full, Partial, or Error - so a caller can recover
// cleanly from truncation, resource exhaustion, or I/O failure mid-request.
//
// # Whole-request saving
//
// Pull fields from a Source (for HTTP requests, see core/form) and save them
// to a temporary or permanent directory:
//
//	import "github.com/dmitrymomot/partsave/core/save"
//
//	res := save.New().
//		SizeLimit(32 << 20).
//		CountLimit(10).
//		Temp(src)
//
//	entries, err := res.IntoResultStrict()
//	if err != nil {
//		// Something actually broke; configured limits are not errors.
//		return err
//	}
//	defer entries.Close() // removes the temp dir unless Keep() was called
//
//	for name, fields := range entries.Fields {
//		for _, f := range fields {
//			fmt.Println(name, f.Data.Size())
//		}
//	}
//
// # Partial results
//
// Hitting a configured limit is not an error. The result carries everything
// that was legitimately saved before the cutoff, plus the in-flight field:
//
//	if partial, reason, ok := res.Partial(); ok {
//		switch reason.Kind {
//		case save.ReasonCountLimit:
//			// The cut-off field's body is completely unconsumed;
//			// drain it, resume with WithEntries, or discard it.
//		case save.ReasonSizeLimit:
//			// Keep the truncated file anyway:
//			entries := partial.KeepPartial()
//			defer entries.Close()
//		case save.ReasonIOError:
//			return reason.Err
//		}
//	}
//
// # Single fields
//
// Individual file bodies can be saved without the request loop:
//
//	res := save.New().MemoryThreshold(1 << 20).FieldWithDir(body, "/var/uploads")
//	if data, ok := res.Value(); ok {
//		if path, size, ok := data.File(); ok {
//			fmt.Println("spilled to", path, size)
//		}
//	}
//
// # Text policy
//
// Fields that resolve fully in memory are decoded according to the text
// policy: TryText (the default) keeps valid UTF-8 as text and falls back to
// bytes, ForceText errors on invalid UTF-8, IgnoreText never decodes.
// Content that spills to disk is always treated as opaque bytes.
//
// # Warning: do not trust user input
//
// Destination paths are used as given. Building paths from user-controlled
// filenames is a serious security risk; sanitizing them is the caller's
// responsibility.
package save
