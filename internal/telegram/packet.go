package telegram

import (
	"fmt"
	"strconv"

	"github.com/juju/errors"
)

type Kind uint8

const (
	KindUnknown Kind = iota
	KindInformation
	KindRequest
	KindResponse
	KindWrite
)

var kindVerbs = map[string]Kind{
	"I":  KindInformation,
	"RQ": KindRequest,
	"RP": KindResponse,
	"W":  KindWrite,
}

func (self Kind) String() string {
	switch self {
	case KindInformation:
		return "I"
	case KindRequest:
		return "RQ"
	case KindResponse:
		return "RP"
	case KindWrite:
		return "W"
	}
	return "unknown"
}

func ParseKind(verb string) (Kind, error) {
	if k, ok := kindVerbs[verb]; ok {
		return k, nil
	}
	return KindUnknown, errors.Annotatef(ErrUnknownPacketType, "verb='%s'", verb)
}

// Packet is one decoded telegram. Treat as read-only value.
type Packet struct {
	// Higher is less trustworthy.
	Signal  uint16
	Kind    Kind
	Command Command
	Addr    [3]string
	Payload Payload
}

// ZoneTemps returns payload as zone temperatures when packet carries them.
func (self *Packet) ZoneTemps() (ZoneTemps, bool) {
	zt, ok := self.Payload.(ZoneTemps)
	return zt, ok
}

func (self *Packet) String() string {
	payload := "-"
	if self.Payload != nil {
		payload = self.Payload.String()
	}
	return fmt.Sprintf("signal=%d kind=%s command=%s addr=%v payload=%s",
		self.Signal, self.Kind, self.Command, self.Addr, payload)
}

// Parse decodes one telegram line. First error wins.
// Signal quality threshold is not applied here.
func Parse(line string) (Packet, error) {
	f, err := Split(line)
	if err != nil {
		return Packet{}, err
	}

	p := Packet{Addr: f.Addr()}
	signal, err := strconv.ParseUint(f.Signal(), 10, 16)
	if err != nil {
		return Packet{}, errors.Wrapf(err, ErrInvalidSignalQuality, "signal='%s' bytes=%x", f.Signal(), f.Signal())
	}
	p.Signal = uint16(signal)
	if p.Kind, err = ParseKind(f.Verb()); err != nil {
		return Packet{}, err
	}
	if p.Command, err = ResolveCommand(f.Code()); err != nil {
		return Packet{}, err
	}
	if p.Payload, err = DecodePayload(p.Command, f.Payload()); err != nil {
		return Packet{}, errors.Annotatef(err, "command=%s", p.Command)
	}
	return p, nil
}
