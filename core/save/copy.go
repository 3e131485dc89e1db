package save

import (
	"errors"
	"io"
	"syscall"
)

// isInterrupt reports whether err is a transient interrupted-I/O signal
// that should be retried at the point of occurrence.
func isInterrupt(err error) bool {
	return errors.Is(err, syscall.EINTR)
}

// writeAll writes buf to dst in full, retrying interrupted writes and
// re-issuing partial ones. A write call reporting zero progress on a
// non-empty buffer is an unretryable short write.
func writeAll(dst io.Writer, buf []byte) SaveResult[int] {
	total := 0

	for len(buf) > 0 {
		n, err := dst.Write(buf)
		if n > 0 {
			total += n
			buf = buf[n:]
			continue
		}
		if err == nil {
			err = io.ErrShortWrite
		} else if isInterrupt(err) {
			continue
		}
		if total == 0 {
			return Errored[int](err)
		}
		return Partial(total, IOErrorReason(err))
	}

	return Full(total)
}

// fillBuf exposes the reader's internal buffer without consuming it,
// refilling from the underlying stream when empty. A nil slice with a nil
// error means end of stream.
func fillBuf(src BufferedReader) ([]byte, error) {
	for {
		if _, err := src.Peek(1); err != nil {
			if isInterrupt(err) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, err
		}
		break
	}
	buf, err := src.Peek(src.Buffered())
	if err != nil && len(buf) == 0 {
		return nil, err
	}
	return buf, nil
}

// copyBuffered copies src to dst via repeated fill/write/consume, writing
// each chunk fully before consuming it from the reader. The accumulated
// byte count is always returned alongside the outcome so callers know
// exactly how much was durably written even on failure.
func copyBuffered(src BufferedReader, dst io.Writer) SaveResult[int64] {
	var total int64

	for {
		buf, err := fillBuf(src)
		if err != nil {
			if total == 0 {
				return Errored[int64](err)
			}
			return Partial(total, IOErrorReason(err))
		}
		if len(buf) == 0 {
			return Full(total)
		}

		res := writeAll(dst, buf)
		if n, ok := res.Value(); ok && n > 0 {
			// Discarding bytes already held in the buffer cannot fail.
			_, _ = src.Discard(n)
			total += int64(n)
		}
		switch res.Status() {
		case StatusPartial:
			reason, _ := res.Reason()
			return Partial(total, reason)
		case StatusError:
			return Partial(total, IOErrorReason(res.Err()))
		}
	}
}

// copyLimited copies at most limit bytes from src to dst, then peeks one
// byte past the boundary without consuming it: nothing left means the
// field ended exactly at the limit, more means it was truncated.
func copyLimited(src BufferedReader, dst io.Writer, limit int64) SaveResult[int64] {
	res := copyBuffered(&limitedBuffered{src: src, remaining: limit}, dst)
	if res.Status() != StatusFull {
		return res
	}
	copied, _ := res.Value()

	if _, err := src.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return Full(copied)
		}
		return Partial(copied, IOErrorReason(err))
	}
	return Partial(copied, SizeLimitReason())
}

// limitedBuffered caps a BufferedReader at a fixed number of remaining
// bytes, reporting end of stream once they are consumed.
type limitedBuffered struct {
	src       BufferedReader
	remaining int64
}

func (l *limitedBuffered) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.src.Read(p)
	l.remaining -= int64(n)
	return n, err
}

func (l *limitedBuffered) Peek(n int) ([]byte, error) {
	if l.remaining <= 0 {
		return nil, io.EOF
	}
	if int64(n) > l.remaining {
		n = int(l.remaining)
	}
	buf, err := l.src.Peek(n)
	if int64(len(buf)) > l.remaining {
		buf = buf[:l.remaining]
	}
	return buf, err
}

func (l *limitedBuffered) Discard(n int) (int, error) {
	if int64(n) > l.remaining {
		n = int(l.remaining)
	}
	n, err := l.src.Discard(n)
	l.remaining -= int64(n)
	return n, err
}

func (l *limitedBuffered) Buffered() int {
	b := l.src.Buffered()
	if int64(b) > l.remaining {
		b = int(l.remaining)
	}
	return b
}
