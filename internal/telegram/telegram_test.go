package telegram

import (
	"fmt"
	"strings"
	"testing"

	"github.com/heatlink/hgi80/helpers"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	t.Parallel()

	type Case struct {
		name   string
		input  string
		expect error
	}
	cases := []Case{
		{"empty", "", ErrMalformedFrame},
		{"whitespace", "   \t \r\n", ErrMalformedFrame},
		{"too-few", "1 2 3 4 5 6 7 8 ", ErrMalformedFrame},
		{"too-many", "063  I --- 04:143260 --:------ 04:143260 30C9 003 000702 extra", ErrMalformedFrame},
		{"payload-1-short", "063  I --- 04:143260 --:------ 04:143260 30C9 006 00070203081", ErrPayloadSizeMismatch},
		{"payload-1-over", "063  I --- 04:143260 --:------ 04:143260 30C9 006 000702030814A", ErrPayloadSizeMismatch},
		{"length-not-number", "063  I --- 04:143260 --:------ 04:143260 30C9 0x6 000702030814", ErrPayloadSizeMismatch},
		{"ok", "063  I --- 04:143260 --:------ 04:143260 30C9 006 000702030814", nil},
		{"zero-length-drops-column", "063  I --- 04:143260 --:------ 04:143260 30C9 000 ", ErrMalformedFrame},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			_, err := Split(c.input)
			if c.expect == nil {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, c.expect, errors.Cause(err), errors.ErrorStack(err))
			}
		})
	}
}

func TestSplitColumns(t *testing.T) {
	t.Parallel()
	f, err := Split("\x11045 RQ --- 18:730 01:073979 --:------ 30C9 001 00\r\n")
	require.NoError(t, err)
	assert.Equal(t, "045", f.Signal())
	assert.Equal(t, "RQ", f.Verb())
	assert.Equal(t, [3]string{"18:730", "01:073979", "--:------"}, f.Addr())
	assert.Equal(t, "30C9", f.Code())
	assert.Equal(t, 1, f.Length)
	assert.Equal(t, "00", f.Payload())
}

func TestResolveCommand(t *testing.T) {
	t.Parallel()

	cmd, err := ResolveCommand("30C9")
	require.NoError(t, err)
	assert.Equal(t, CommandZoneTemp, cmd)
	cmd, err = ResolveCommand("30c9")
	require.NoError(t, err)
	assert.Equal(t, CommandZoneTemp, cmd)

	_, err = ResolveCommand("0005")
	assert.Equal(t, ErrUnknownCommand, errors.Cause(err))
	_, err = ResolveCommand("30G9")
	assert.Equal(t, ErrInvalidCommandCode, errors.Cause(err))
	_, err = ResolveCommand("130C9")
	assert.Equal(t, ErrInvalidCommandCode, errors.Cause(err))
	_, err = ResolveCommand("")
	assert.Equal(t, ErrInvalidCommandCode, errors.Cause(err))
}

func TestCommandTableRoundTrip(t *testing.T) {
	t.Parallel()
	for cmd, info := range commandTable {
		code := fmt.Sprintf("%04X", uint16(cmd))
		resolved, err := ResolveCommand(code)
		require.NoError(t, err, code)
		assert.Equal(t, cmd, resolved)
		assert.Equal(t, info.name, cmd.String())
	}
	assert.Len(t, commandTable, 22)
	assert.False(t, CommandUnknown.Known())
	assert.Equal(t, "unknown(FFFF)", CommandUnknown.String())
}

func TestDecodeZoneTemps(t *testing.T) {
	t.Parallel()

	type Case struct {
		name   string
		input  string
		expect ZoneTemps
		err    error
	}
	cases := []Case{
		{"empty", "", ZoneTemps{}, nil},
		{"single", "040702", ZoneTemps{4: 17.94}, nil},
		{"round-trip-zone3", "030702", ZoneTemps{3: 17.94}, nil},
		{"pair", "030702010814", ZoneTemps{3: 17.94, 1: 20.68}, nil},
		{"negative", "01FF9C", ZoneTemps{1: -1}, nil},
		{"lowercase", "0a06e1", ZoneTemps{10: 17.61}, nil},
		{"repeat-last-wins", "030702030814", ZoneTemps{3: 20.68}, nil},
		{"long", "0007070106CE0206C70307320405FB05070F06064D070789",
			ZoneTemps{0: 17.99, 1: 17.42, 2: 17.35, 3: 18.42, 4: 15.31, 5: 18.07, 6: 16.13, 7: 19.29}, nil},
		{"len-2", "01", nil, ErrPayloadLengthNotMultipleOfSix},
		{"len-5", "01020", nil, ErrPayloadLengthNotMultipleOfSix},
		{"bad-temp-hex", "1234X6", nil, ErrInvalidHexDigit},
		{"bad-zone-hex", "1X3456", nil, ErrInvalidHexDigit},
		{"bad-second-window", "0307020X0814", nil, ErrInvalidHexDigit},
		{"sign-not-hex", "01+123", nil, ErrInvalidHexDigit},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			zt, err := DecodeZoneTemps(c.input)
			if c.err != nil {
				require.Error(t, err)
				assert.Equal(t, c.err, errors.Cause(err))
				assert.Nil(t, zt)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.expect, zt)
		})
	}
}

func TestDecodePayloadUnsupported(t *testing.T) {
	t.Parallel()
	for cmd := range commandTable {
		if cmd == CommandZoneTemp {
			continue
		}
		_, err := DecodePayload(cmd, "00")
		assert.Equal(t, ErrUnsupportedPayload, errors.Cause(err), cmd.String())
	}
	_, err := DecodePayload(Command(0x0005), "")
	assert.Equal(t, ErrUnknownCommand, errors.Cause(err))
}

func TestParse(t *testing.T) {
	t.Parallel()

	p, err := Parse("063  I --- 04:143260 --:------ 04:143260 30C9 006 000702030814")
	require.NoError(t, err)
	assert.Equal(t, uint16(63), p.Signal)
	assert.Equal(t, KindInformation, p.Kind)
	assert.Equal(t, CommandZoneTemp, p.Command)
	assert.Equal(t, [3]string{"04:143260", "--:------", "04:143260"}, p.Addr)
	zt, ok := p.ZoneTemps()
	require.True(t, ok)
	assert.Equal(t, ZoneTemps{0: 17.94, 3: 20.68}, zt)
	t.Log(p.String())
}

func TestParseControlCharacters(t *testing.T) {
	t.Parallel()
	// gateway outputs non printable bytes quite often
	p, err := Parse("\x11\x11095  I --- 04:112669 --:------ 04:112669 30C9 003 0006E1\x11\x11\n")
	require.NoError(t, err)
	assert.Equal(t, uint16(95), p.Signal)
	zt, _ := p.ZoneTemps()
	assert.Equal(t, ZoneTemps{0: 17.61}, zt)
}

func TestParseNoisySignalStillParses(t *testing.T) {
	t.Parallel()
	p, err := Parse("085  I --- 04:143260 --:------ 04:143260 30C9 003 000702")
	require.NoError(t, err)
	assert.Equal(t, uint16(85), p.Signal)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	const tail = " --- 04:143260 --:------ 04:143260 "
	type Case struct {
		name  string
		input string
		err   error
	}
	cases := []Case{
		{"signal", "0x3  I" + tail + "30C9 003 000702", ErrInvalidSignalQuality},
		{"signal-overflow", "99999  I" + tail + "30C9 003 000702", ErrInvalidSignalQuality},
		{"verb", "063  X" + tail + "30C9 003 000702", ErrUnknownPacketType},
		{"command-code", "063  I" + tail + "ZZZZ 003 000702", ErrInvalidCommandCode},
		{"command-unknown", "063  I" + tail + "0005 003 000702", ErrUnknownCommand},
		{"unsupported", "063  I" + tail + "1060 003 000702", ErrUnsupportedPayload},
		{"not-six", "063  I" + tail + "30C9 002 0007", ErrPayloadLengthNotMultipleOfSix},
		{"hex", "063  I" + tail + "30C9 003 00070Z", ErrInvalidHexDigit},
		{"size-before-signal", "xx  I" + tail + "30C9 004 000702", ErrPayloadSizeMismatch},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(c.input)
			require.Error(t, err)
			assert.Equal(t, c.err, errors.Cause(err), err.Error())
			assert.True(t, IsDecodeError(err))
		})
	}
}

func TestPropertyColumnCount(t *testing.T) {
	t.Parallel()
	base := strings.Fields("063 I --- 04:143260 --:------ 04:143260 30C9 003 000702")
	for n := 0; n <= 12; n++ {
		if n == FrameColumns {
			continue
		}
		cols := make([]string, n)
		for i := range cols {
			cols[i] = base[i%len(base)]
		}
		_, err := Parse(strings.Join(cols, " "))
		assert.Equal(t, ErrMalformedFrame, errors.Cause(err), "columns=%d", n)
	}
}

func TestPropertyPayloadSize(t *testing.T) {
	t.Parallel()
	for declared := 0; declared < 8; declared++ {
		for chars := 0; chars < 16; chars += 2 {
			if declared*2 == chars || chars == 0 {
				continue
			}
			line := fmt.Sprintf("063 I --- 04:1 --:- 04:1 30C9 %03d %s", declared, strings.Repeat("0", chars))
			_, err := Parse(line)
			assert.Equal(t, ErrPayloadSizeMismatch, errors.Cause(err), line)
		}
	}
}

func TestIsDecodeError(t *testing.T) {
	t.Parallel()
	assert.False(t, IsDecodeError(nil))
	assert.False(t, IsDecodeError(errors.New("other")))
	assert.True(t, IsDecodeError(errors.Annotate(ErrMalformedFrame, "context")))
}

func TestPropertyZoneTempsRandom(t *testing.T) {
	t.Parallel()
	rnd, seed := helpers.RandUnix()
	for i := 0; i < 200; i++ {
		n := rnd.Intn(12)
		expect := make(ZoneTemps, n)
		var sb strings.Builder
		for j := 0; j < n; j++ {
			zone := uint8(j)
			raw := int16(rnd.Intn(0x10000) - 0x8000)
			expect[zone] = float64(raw) / 100
			fmt.Fprintf(&sb, "%02X%04X", zone, uint16(raw))
		}
		zt, err := DecodeZoneTemps(sb.String())
		require.NoError(t, err, "seed=%d payload=%s", seed, sb.String())
		assert.Equal(t, expect, zt, "seed=%d payload=%s", seed, sb.String())
	}
}
