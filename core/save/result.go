package save

import "fmt"

// Status discriminates the three outcomes of a save operation.
type Status int

const (
	// StatusFull means the operation was a total success.
	StatusFull Status = iota
	// StatusPartial means the operation stopped partway through for a
	// specific reason, carrying whatever was produced up to that point.
	StatusPartial
	// StatusError means the operation failed before anything was done.
	StatusError
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusFull:
		return "full"
	case StatusPartial:
		return "partial"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ReasonKind classifies why a save stopped partway through.
type ReasonKind int

const (
	// ReasonCountLimit means the per-request file count limit was hit.
	// The associated field has not been touched.
	ReasonCountLimit ReasonKind = iota
	// ReasonSizeLimit means the per-field size limit was hit. The field
	// was partially persisted.
	ReasonSizeLimit
	// ReasonIOError means an I/O error interrupted the operation.
	ReasonIOError
)

// String implements fmt.Stringer.
func (k ReasonKind) String() string {
	switch k {
	case ReasonCountLimit:
		return "count limit"
	case ReasonSizeLimit:
		return "size limit"
	case ReasonIOError:
		return "io error"
	default:
		return fmt.Sprintf("reason(%d)", int(k))
	}
}

// PartialReason explains why a save operation quit partway through.
// CountLimit and SizeLimit are expected, policy-driven truncations;
// IOError is an unexpected failure.
type PartialReason struct {
	Kind ReasonKind
	Err  error // set only when Kind is ReasonIOError
}

// CountLimitReason returns the count-limit truncation reason.
func CountLimitReason() PartialReason { return PartialReason{Kind: ReasonCountLimit} }

// SizeLimitReason returns the size-limit truncation reason.
func SizeLimitReason() PartialReason { return PartialReason{Kind: ReasonSizeLimit} }

// IOErrorReason wraps an I/O failure as a partial reason.
func IOErrorReason(err error) PartialReason {
	return PartialReason{Kind: ReasonIOError, Err: err}
}

// UnwrapErr returns the underlying I/O error. It panics when the reason is
// a configured limit; call it only where the call site's invariants
// guarantee an I/O error.
func (r PartialReason) UnwrapErr() error {
	if r.Kind != ReasonIOError {
		panic(fmt.Sprintf("save: PartialReason is %s, not an io error", r.Kind))
	}
	return r.Err
}

// String implements fmt.Stringer.
func (r PartialReason) String() string {
	if r.Kind == ReasonIOError && r.Err != nil {
		return fmt.Sprintf("io error: %v", r.Err)
	}
	return r.Kind.String()
}

// SaveResult is the ternary outcome of a save step whose Full and Partial
// payloads share one type, such as byte counts and saved field data.
type SaveResult[T any] struct {
	status Status
	value  T
	reason PartialReason
	err    error
}

// Full returns a total-success result carrying v.
func Full[T any](v T) SaveResult[T] {
	return SaveResult[T]{status: StatusFull, value: v}
}

// Partial returns a partial result carrying the best-effort payload and the
// reason processing stopped.
func Partial[T any](v T, reason PartialReason) SaveResult[T] {
	return SaveResult[T]{status: StatusPartial, value: v, reason: reason}
}

// Errored returns an error result. No partial progress is carried.
func Errored[T any](err error) SaveResult[T] {
	return SaveResult[T]{status: StatusError, err: err}
}

// Status reports which of the three outcomes this result holds.
func (r SaveResult[T]) Status() Status { return r.status }

// Value returns the payload of a Full or Partial result.
func (r SaveResult[T]) Value() (T, bool) {
	if r.status == StatusError {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Reason returns the partial reason; ok is false unless the result is
// Partial.
func (r SaveResult[T]) Reason() (PartialReason, bool) {
	return r.reason, r.status == StatusPartial
}

// Err returns the error of an Error result, nil otherwise.
func (r SaveResult[T]) Err() error { return r.err }

// IntoResult optimistically collapses the result into a value/error pair,
// treating Partial as success and discarding the reason.
func (r SaveResult[T]) IntoResult() (T, error) {
	if r.status == StatusError {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}

// IntoResultStrict collapses the result into a value/error pair, treating a
// Partial as failure only when its reason is an I/O error. Hitting a
// configured limit still counts as success.
func (r SaveResult[T]) IntoResultStrict() (T, error) {
	switch r.status {
	case StatusError:
		var zero T
		return zero, r.err
	case StatusPartial:
		if r.reason.Kind == ReasonIOError {
			var zero T
			return zero, r.reason.Err
		}
	}
	return r.value, nil
}

// IntoOptBoth decomposes the result into an optional best-effort payload
// and an optional underlying failure, for callers who want both.
func (r SaveResult[T]) IntoOptBoth() (T, bool, error) {
	switch r.status {
	case StatusFull:
		return r.value, true, nil
	case StatusPartial:
		if r.reason.Kind == ReasonIOError {
			return r.value, true, r.reason.Err
		}
		return r.value, true, nil
	default:
		var zero T
		return zero, false, r.err
	}
}

// Map transforms the payload of a Full or Partial result uniformly,
// preserving the reason in the Partial case.
func Map[T, U any](r SaveResult[T], fn func(T) U) SaveResult[U] {
	switch r.status {
	case StatusFull:
		return Full(fn(r.value))
	case StatusPartial:
		return Partial(fn(r.value), r.reason)
	default:
		return Errored[U](r.err)
	}
}

// EntriesResult is the ternary outcome of a whole-request save: Entries on
// total success, PartialEntries when processing stopped partway through.
type EntriesResult struct {
	status  Status
	entries *Entries
	partial *PartialEntries
	reason  PartialReason
	err     error
}

// FullEntries returns a total-success request result.
func FullEntries(entries *Entries) EntriesResult {
	return EntriesResult{status: StatusFull, entries: entries}
}

// PartialSave returns a partial request result with the reason processing
// stopped.
func PartialSave(partial *PartialEntries, reason PartialReason) EntriesResult {
	return EntriesResult{status: StatusPartial, partial: partial, reason: reason}
}

// ErroredEntries returns an error request result; nothing was saved.
func ErroredEntries(err error) EntriesResult {
	return EntriesResult{status: StatusError, err: err}
}

// Status reports which of the three outcomes this result holds.
func (r EntriesResult) Status() Status { return r.status }

// Entries returns the saved entries of a Full result.
func (r EntriesResult) Entries() (*Entries, bool) {
	return r.entries, r.status == StatusFull
}

// Partial returns the partial entries and reason of a Partial result.
func (r EntriesResult) Partial() (*PartialEntries, PartialReason, bool) {
	return r.partial, r.reason, r.status == StatusPartial
}

// Err returns the error of an Error result, nil otherwise.
func (r EntriesResult) Err() error { return r.err }

// IntoEntries takes whatever entries exist, discarding the partial-field
// context and any error. There may still have been a failure.
func (r EntriesResult) IntoEntries() (*Entries, bool) {
	switch r.status {
	case StatusFull:
		return r.entries, true
	case StatusPartial:
		return r.partial.Entries, true
	default:
		return nil, false
	}
}

// IntoResult optimistically collapses the result, treating Partial as
// success and discarding the reason.
func (r EntriesResult) IntoResult() (*Entries, error) {
	switch r.status {
	case StatusFull:
		return r.entries, nil
	case StatusPartial:
		return r.partial.Entries, nil
	default:
		return nil, r.err
	}
}

// IntoResultStrict collapses the result, treating a Partial as failure only
// when its reason is an I/O error. The entries accumulated before the
// failure are discarded; use Partial directly to salvage them.
func (r EntriesResult) IntoResultStrict() (*Entries, error) {
	switch r.status {
	case StatusFull:
		return r.entries, nil
	case StatusPartial:
		if r.reason.Kind == ReasonIOError {
			return nil, r.reason.Err
		}
		return r.partial.Entries, nil
	default:
		return nil, r.err
	}
}
