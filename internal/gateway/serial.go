package gateway

import (
	"expvar"
	"time"

	"github.com/heatlink/hgi80/helpers"
	"github.com/heatlink/hgi80/log2"
	"github.com/juju/errors"
	"go.bug.st/serial"
)

const (
	DefaultBaud        = 115200
	DefaultReadTimeout = 500 * time.Millisecond
)

// RxBytes counts bytes received from all opened serial gateways.
var RxBytes = expvar.NewInt("gateway_rx_bytes")

type Options struct {
	Device      string
	Baud        int
	ReadTimeout time.Duration
	MaxLine     int
}

// Port is a gateway attached to a serial device.
type Port struct {
	*LineReader
	device string
	port   serial.Port
	log    *log2.Log
}

func OpenSerial(opt Options, log *log2.Log) (*Port, error) {
	if opt.Device == "" {
		return nil, errors.NotValidf("gateway serial device empty")
	}
	if opt.Baud == 0 {
		opt.Baud = DefaultBaud
	}
	if opt.ReadTimeout == 0 {
		opt.ReadTimeout = DefaultReadTimeout
	}

	p, err := serial.Open(opt.Device, &serial.Mode{
		BaudRate: opt.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, errors.Annotatef(err, "gateway open device=%s", opt.Device)
	}
	if err = p.SetReadTimeout(opt.ReadTimeout); err != nil {
		_ = p.Close()
		return nil, errors.Annotatef(err, "gateway set read timeout=%s", opt.ReadTimeout)
	}
	// gateway was probably talking before we opened it, drop half telegram
	if err = p.ResetInputBuffer(); err != nil {
		log.Errorf("gateway reset input device=%s err=%v", opt.Device, err)
	}

	lr := NewLineReader(helpers.NewStatReader(p, RxBytes), opt.ReadTimeout, opt.MaxLine)
	lr.Log = log
	log.Infof("gateway open device=%s baud=%d timeout=%s", opt.Device, opt.Baud, opt.ReadTimeout)
	return &Port{
		LineReader: lr,
		device:     opt.Device,
		port:       p,
		log:        log,
	}, nil
}

func (self *Port) Close() error {
	self.log.Debugf("gateway close device=%s", self.device)
	return errors.Trace(self.port.Close())
}
