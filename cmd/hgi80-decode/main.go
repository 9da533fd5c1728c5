// hgi80-decode prints decoded telegrams from a gateway capture, one line per telegram.
// Useful to see why the relay skipped something.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/heatlink/hgi80/internal/forward"
	"github.com/heatlink/hgi80/internal/gateway"
	"github.com/heatlink/hgi80/internal/relay"
	"github.com/heatlink/hgi80/internal/telegram"
	"github.com/heatlink/hgi80/log2"
	"github.com/juju/errors"
	"github.com/mattn/go-isatty"
)

var log = log2.NewStderr(log2.LInfo)

func main() {
	flagSignalMax := flag.Uint("signal-max", relay.DefaultSignalMax, "signal quality treated as noise")
	flagJSON := flag.Bool("json", false, "print collector JSON for forwarded readings")
	flag.Parse()
	log.SetFlags(0)

	if flag.NArg() == 0 && isatty.IsTerminal(os.Stdin.Fd()) {
		log.Info("reading telegrams from terminal, end with Ctrl-D")
	}
	d := newDecoder(os.Stdout, *flagSignalMax, *flagJSON)
	if flag.NArg() == 0 {
		if err := d.run(os.Stdin); err != nil {
			log.Fatal(errors.ErrorStack(err))
		}
	}
	for _, path := range flag.Args() {
		f, err := os.Open(path)
		if err != nil {
			log.Fatal(errors.ErrorStack(errors.Annotatef(err, "open path=%s", path)))
		}
		err = d.run(f)
		f.Close()
		if err != nil {
			log.Fatal(errors.ErrorStack(errors.Annotatef(err, "path=%s", path)))
		}
	}
}

type decoder struct {
	w         io.Writer
	signalMax uint16
	json      bool
}

// newDecoder treats zero signalMax as default, same as relay loop.
func newDecoder(w io.Writer, signalMax uint, json bool) *decoder {
	if signalMax == 0 || signalMax > 0xffff {
		signalMax = relay.DefaultSignalMax
	}
	return &decoder{w: w, signalMax: uint16(signalMax), json: json}
}

func (self *decoder) run(r io.Reader) error {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, gateway.DefaultMaxLine), gateway.DefaultMaxLine*4)
	for s.Scan() {
		line := s.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fmt.Fprintln(self.w, self.describe(line))
	}
	return errors.Trace(s.Err())
}

func (self *decoder) describe(line string) string {
	p, err := telegram.Parse(line)
	if err != nil {
		return fmt.Sprintf("error %v line=%q", err, line)
	}
	if p.Signal >= self.signalMax {
		return fmt.Sprintf("noisy %s", p.String())
	}
	zt, ok := p.ZoneTemps()
	if !ok {
		return fmt.Sprintf("ignored %s", p.String())
	}
	if self.json {
		b, err := forward.Encode(zt)
		if err != nil {
			return fmt.Sprintf("error %v", err)
		}
		return fmt.Sprintf("forward %s", b)
	}
	return fmt.Sprintf("forward %s", p.String())
}
