package gateway

import (
	"bytes"
	"io"
	"time"

	"github.com/heatlink/hgi80/log2"
	"github.com/juju/errors"
)

const DefaultMaxLine = 512

type Timeouter interface {
	Timeout() bool
}

// LineReader splits a byte stream into telegram lines.
// Underlying Read returning (0, nil) means read timeout, like go.bug.st/serial does.
type LineReader struct {
	Log *log2.Log

	r       io.Reader
	timeout time.Duration
	maxLine int
	chunk   []byte
	// received, not yet consumed
	buf []byte
	// overlong line, drop bytes up to next newline
	skip bool
}

func NewLineReader(r io.Reader, timeout time.Duration, maxLine int) *LineReader {
	if maxLine <= 0 {
		maxLine = DefaultMaxLine
	}
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	return &LineReader{
		r:       r,
		timeout: timeout,
		maxLine: maxLine,
		chunk:   make([]byte, 256),
		buf:     make([]byte, 0, maxLine*2),
	}
}

// ReadLine returns next line including newline.
// Timeout error (errors.IsTimeout) is returned when no complete line arrived within timeout,
// also when the gateway keeps sending bytes without newline or an overlong run is dropped.
// Partially received line is kept for next call.
// Any other error means the stream is broken.
func (self *LineReader) ReadLine() (string, error) {
	begin := time.Now()
	for {
		if i := bytes.IndexByte(self.buf, '\n'); i >= 0 {
			line := string(self.buf[:i+1])
			n := copy(self.buf, self.buf[i+1:])
			self.buf = self.buf[:n]
			if self.skip {
				self.skip = false
				continue
			}
			if i > self.maxLine {
				self.Log.Debugf("gateway line overflow max=%d dropped=%q", self.maxLine, line)
				continue
			}
			return line, nil
		}
		if len(self.buf) > self.maxLine {
			self.Log.Debugf("gateway line overflow max=%d dropped=%q", self.maxLine, self.buf)
			self.buf = self.buf[:0]
			self.skip = true
			return "", errors.Timeoutf("gateway line overflow max=%d", self.maxLine)
		}
		if time.Since(begin) >= self.timeout {
			return "", errors.Timeoutf("gateway no newline within timeout=%s", self.timeout)
		}

		n, err := self.r.Read(self.chunk)
		if n > 0 {
			self.buf = append(self.buf, self.chunk[:n]...)
		}
		if err != nil {
			if te, ok := err.(Timeouter); ok && te.Timeout() {
				return "", errors.Timeoutf("gateway read timeout=%s", self.timeout)
			}
			return "", errors.Annotate(err, "gateway read")
		}
		if n == 0 {
			return "", errors.Timeoutf("gateway read timeout=%s", self.timeout)
		}
	}
}
