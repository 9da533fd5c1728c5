package telegram

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// Payload is a decoded telegram payload. ZoneTemps is the only implementation.
type Payload interface {
	Command() Command
	String() string
}

// ZoneTemps maps zone id to temperature in degrees Celsius.
type ZoneTemps map[uint8]float64

const zoneTempWindow = 6

func (ZoneTemps) Command() Command { return CommandZoneTemp }

// Zones returns zone ids in ascending order.
func (self ZoneTemps) Zones() []uint8 {
	zones := make([]uint8, 0, len(self))
	for z := range self {
		zones = append(zones, z)
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i] < zones[j] })
	return zones
}

func (self ZoneTemps) String() string {
	parts := make([]string, 0, len(self))
	for _, z := range self.Zones() {
		parts = append(parts, fmt.Sprintf("%d:%.2f", z, self[z]))
	}
	return "zone_temp{" + strings.Join(parts, " ") + "}"
}

// DecodeZoneTemps decodes any number of <zone:1 byte><centidegrees:int16> groups.
// Empty input is a valid empty reading.
func DecodeZoneTemps(hex string) (ZoneTemps, error) {
	if len(hex)%zoneTempWindow != 0 {
		return nil, errors.Annotatef(ErrPayloadLengthNotMultipleOfSix, "payload='%s' length=%d", hex, len(hex))
	}
	result := make(ZoneTemps, len(hex)/zoneTempWindow)
	for i := 0; i < len(hex); i += zoneTempWindow {
		zone, err := strconv.ParseUint(hex[i:i+2], 16, 8)
		if err != nil {
			return nil, errors.Wrapf(err, ErrInvalidHexDigit, "zone id payload='%s' offset=%d", hex, i)
		}
		centi, err := strconv.ParseUint(hex[i+2:i+6], 16, 16)
		if err != nil {
			return nil, errors.Wrapf(err, ErrInvalidHexDigit, "zone temperature payload='%s' offset=%d", hex, i+2)
		}
		result[uint8(zone)] = float64(int16(centi)) / 100
	}
	return result, nil
}

func decodeZoneTempsPayload(hex string) (Payload, error) {
	zt, err := DecodeZoneTemps(hex)
	if err != nil {
		return nil, err
	}
	return zt, nil
}

// DecodePayload dispatches to the decoder registered for cmd.
func DecodePayload(cmd Command, hex string) (Payload, error) {
	info, ok := commandTable[cmd]
	if !ok {
		return nil, errors.Annotatef(ErrUnknownCommand, "code=%04X", uint16(cmd))
	}
	if info.decode == nil {
		return nil, errors.Annotatef(ErrUnsupportedPayload, "command=%s", cmd)
	}
	return info.decode(hex)
}
