package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"063  I --- 04:143260 --:------ 04:143260 30C9 003 000702\r",
		"",
		"085  I --- 04:143260 --:------ 04:143260 30C9 003 000702",
		"045 RQ --- 18:730 01:145038 --:------ 1F09 001 00",
		"garbage",
	}, "\n")
	var out bytes.Buffer
	d := newDecoder(&out, 80, true)
	require.NoError(t, d.run(strings.NewReader(input)))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, `forward [{"id":"RADIATOR0","temp":17.94}]`, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "noisy signal=85"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "error "), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "error "), lines[3])
}

func TestDecoderSignalMaxDefault(t *testing.T) {
	t.Parallel()

	type Case struct {
		name   string
		flag   uint
		expect uint16
	}
	cases := []Case{
		{"zero", 0, 80},
		{"custom", 90, 90},
		{"overflow", 70000, 80},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			d := newDecoder(&out, c.flag, false)
			assert.Equal(t, c.expect, d.signalMax)
			require.NoError(t, d.run(strings.NewReader("063  I --- 04:143260 --:------ 04:143260 30C9 003 000702\n")))
			assert.True(t, strings.HasPrefix(out.String(), "forward "), out.String())
		})
	}
}
