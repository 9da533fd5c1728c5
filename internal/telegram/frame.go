package telegram

import (
	"strconv"
	"strings"

	"github.com/juju/errors"
)

const FrameColumns = 9

// Column positions in a telegram line.
const (
	colSignal = iota
	colVerb
	colReserved
	colAddr0
	colAddr1
	colAddr2
	colCommand
	colLength
	colPayload
)

// Frame is a tokenized telegram line:
// 063  I --- 04:143260 --:------ 04:143260 30C9 006 000702030814
type Frame struct {
	Columns [FrameColumns]string
	// declared payload length in bytes
	Length int
}

func (self *Frame) Signal() string  { return self.Columns[colSignal] }
func (self *Frame) Verb() string    { return self.Columns[colVerb] }
func (self *Frame) Code() string    { return self.Columns[colCommand] }
func (self *Frame) Payload() string { return self.Columns[colPayload] }
func (self *Frame) Addr() [3]string {
	return [3]string{self.Columns[colAddr0], self.Columns[colAddr1], self.Columns[colAddr2]}
}

// Gateway interleaves garbage control bytes between telegrams.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

func isSpace(r rune) bool { return r == ' ' }

// Split strips control characters, tokenizes line and checks declared payload length.
func Split(line string) (Frame, error) {
	clean := stripControl(line)
	tokens := strings.FieldsFunc(clean, isSpace)
	if len(tokens) != FrameColumns {
		return Frame{}, errors.Annotatef(ErrMalformedFrame, "columns=%d expected=%d line='%s'", len(tokens), FrameColumns, clean)
	}

	f := Frame{}
	copy(f.Columns[:], tokens)
	n, err := strconv.ParseUint(f.Columns[colLength], 10, 16)
	if err != nil {
		return Frame{}, errors.Wrapf(err, ErrPayloadSizeMismatch, "length='%s'", f.Columns[colLength])
	}
	f.Length = int(n)
	if 2*f.Length != len(f.Payload()) {
		return Frame{}, errors.Annotatef(ErrPayloadSizeMismatch, "declared=%d bytes payload=%d chars", f.Length, len(f.Payload()))
	}
	return f, nil
}
