package save

import "os"

// SaveDir is the filesystem location backing persisted file fields for one
// save operation. A temporary directory is removed when its owning Entries
// is closed; a permanent one is left on disk.
type SaveDir struct {
	path   string
	temp   bool
	strict bool
}

// NewTempDir allocates a fresh directory under the OS temporary directory
// with the given name prefix.
//
// Note: files under the OS temporary directory may be cleared by the OS at
// any time, usually on reboot or when free space is low. Relocate files
// worth keeping to a permanent location.
func NewTempDir(prefix string) (*SaveDir, error) {
	path, err := os.MkdirTemp("", prefix)
	if err != nil {
		return nil, err
	}
	return &SaveDir{path: path, temp: true}, nil
}

// NewPermDir wraps a permanent directory at the given path, creating it and
// any missing parents.
func NewPermDir(path string) (*SaveDir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, err
	}
	return &SaveDir{path: path}, nil
}

// Path returns the directory path, temporary or permanent.
func (d *SaveDir) Path() string { return d.path }

// IsTemporary reports whether the directory will be removed when its
// owning Entries is closed.
func (d *SaveDir) IsTemporary() bool { return d.temp }

// Keep converts a temporary directory to permanent in place, preventing
// future auto-removal. It is a no-op on an already-permanent directory.
func (d *SaveDir) Keep() { d.temp = false }

// IntoPath marks the directory permanent and returns its path.
func (d *SaveDir) IntoPath() string {
	d.Keep()
	return d.path
}

// StrictDelete controls whether Delete on an already-removed directory is
// surfaced as an error. By default it succeeds, matching os.RemoveAll.
func (d *SaveDir) StrictDelete(strict bool) { d.strict = strict }

// Delete removes the directory and its contents regardless of permanence,
// returning the underlying filesystem failure if removal fails. Files are
// deleted directly from disk; this is very likely irreversible.
func (d *SaveDir) Delete() error {
	if d.strict {
		if _, err := os.Stat(d.path); err != nil {
			return err
		}
	}
	return os.RemoveAll(d.path)
}
