// Package form adapts Go's mime/multipart parsing to the save.Source
// contract, so HTTP multipart requests can be fed directly into the save
// pipeline.
//
// Parts carrying a filename or a non-text content type become file fields
// whose bodies stream through a buffered reader; bare text parts are read
// into memory (bounded by a configurable limit) and yielded as
// already-decoded text fields.
//
// Typical handler wiring:
//
//	func uploadHandler(w http.ResponseWriter, r *http.Request) {
//		src, err := form.FromRequest(r)
//		if err != nil {
//			http.Error(w, err.Error(), http.StatusBadRequest)
//			return
//		}
//
//		res := save.New().SizeLimit(32 << 20).Temp(src)
//		entries, err := res.IntoResultStrict()
//		if err != nil {
//			http.Error(w, "upload failed", http.StatusInternalServerError)
//			return
//		}
//		defer entries.Close()
//		// ...
//	}
//
// The adapter enforces the field-release protocol: a file field's body
// must be released back to the source before the next field can be read.
// The save orchestrator does this automatically.
package form
