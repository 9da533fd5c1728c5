// Package forward delivers decoded zone temperatures to external collectors.
// Delivery is fire-and-forget: failures are logged and never returned to the caller.
package forward

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/heatlink/hgi80/internal/telegram"
)

type Forwarder interface {
	Forward(ctx context.Context, zt telegram.ZoneTemps)
}

// Entry is one element of the collector JSON array.
type Entry struct {
	ID   string  `json:"id"`
	Temp float64 `json:"temp"`
}

func ZoneID(zone uint8) string { return fmt.Sprintf("RADIATOR%d", zone) }

// Encode returns JSON array ordered by zone id.
func Encode(zt telegram.ZoneTemps) ([]byte, error) {
	entries := make([]Entry, 0, len(zt))
	for _, z := range zt.Zones() {
		entries = append(entries, Entry{ID: ZoneID(z), Temp: zt[z]})
	}
	return json.Marshal(entries)
}

// Multi forwards to each sink in order.
type Multi []Forwarder

func (self Multi) Forward(ctx context.Context, zt telegram.ZoneTemps) {
	for _, f := range self {
		f.Forward(ctx, zt)
	}
}

type FuncForwarder func(ctx context.Context, zt telegram.ZoneTemps)

func (f FuncForwarder) Forward(ctx context.Context, zt telegram.ZoneTemps) { f(ctx, zt) }
