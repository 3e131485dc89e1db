package save

// Entries maps field names to their saved records, paired with the save
// directory backing the persisted file fields.
type Entries struct {
	// Fields maps field name to saved records in arrival order. Every
	// sequence is non-empty unless mutated externally.
	Fields map[string][]SavedField

	// Dir backs the persisted file fields for this save operation.
	Dir *SaveDir
}

// NewEntries returns an empty Entries backed by dir. It may be passed to
// Builder.WithEntries to begin or resume a save operation.
func NewEntries(dir *SaveDir) *Entries {
	return &Entries{
		Fields: make(map[string][]SavedField),
		Dir:    dir,
	}
}

// IsEmpty reports whether no fields have been saved.
func (e *Entries) IsEmpty() bool { return len(e.Fields) == 0 }

// push appends a record under its field name, preserving arrival order.
func (e *Entries) push(name string, field SavedField) {
	e.Fields[name] = append(e.Fields[name], field)
}

// Close releases the save operation: a still-temporary save directory is
// removed along with its contents, a permanent one (or one promoted with
// Keep) is left on disk.
func (e *Entries) Close() error {
	if e.Dir != nil && e.Dir.IsTemporary() {
		return e.Dir.Delete()
	}
	return nil
}

// PartialSavedField is the field that was being read when a save operation
// quit, along with its partially written record if the operation got that
// far.
type PartialSavedField struct {
	// Source is the in-flight field. After a count-limit stop its body is
	// completely unconsumed; after a size-limit stop or I/O failure it is
	// positioned wherever processing halted.
	Source *Field

	// Dest is the partially written record, nil if the field never made it
	// to a destination.
	Dest *SavedField
}

// PartialEntries captures the in-flight state of a save operation at the
// moment it stopped partway through.
type PartialEntries struct {
	// Entries holds everything saved successfully before the stop.
	Entries *Entries

	// PartialField is the field being read when the operation stopped,
	// nil if the stop occurred between fields.
	PartialField *PartialSavedField
}

// KeepPartial promotes a partially written record, if any, into the
// entries before discarding the rest of the partial-field context. This is
// opt-in because a half-written file may be unwanted.
func (p *PartialEntries) KeepPartial() *Entries {
	if p.PartialField != nil && p.PartialField.Dest != nil {
		p.Entries.push(p.PartialField.Source.Headers.Name, *p.PartialField.Dest)
	}
	return p.Entries
}
