package device

import (
	"fmt"
	"time"

	"github.com/openmarine/gopico/internal/protocol"
)

// PressureHistory is the projection of an atmospheric pressure history
// broadcast: the rolling 72 hour log the Pico sends over UDP alongside
// its sensor state. Readings are raw register values ordered newest
// first; divide by 20 for millibars.
type PressureHistory struct {
	Timestamp time.Time
	Readings  []uint16
	Extra     []protocol.Field
}

// Millibars converts the readings to millibars, newest first
func (h *PressureHistory) Millibars() []float64 {
	out := make([]float64, len(h.Readings))
	for i, r := range h.Readings {
		out[i] = float64(r) / 20
	}
	return out
}

// Latest returns the newest reading in millibars. ok is false when the
// history is empty.
func (h *PressureHistory) Latest() (float64, bool) {
	if len(h.Readings) == 0 {
		return 0, false
	}
	return float64(h.Readings[0]) / 20, true
}

// ProjectPressureHistory extracts the pressure log from a
// PRESSURE_HISTORY broadcast. The first timeseries field carries the
// log; each 32-bit sample packs two consecutive 16-bit readings, high
// half first.
func ProjectPressureHistory(msg *protocol.Message) (*PressureHistory, error) {
	if msg.Type != protocol.TypePressureHistory {
		return nil, fmt.Errorf("%w: got %s, want PressureHistory", protocol.ErrUnexpectedType, msg.Type)
	}

	hist := &PressureHistory{}

	var haveSeries bool
	for _, f := range msg.Fields {
		if series, ok := f.Series(); ok && !haveSeries {
			hist.Timestamp = time.Unix(int64(series.Start), 0)
			hist.Readings = make([]uint16, 0, len(series.Samples)*2)
			for _, s := range series.Samples {
				hist.Readings = append(hist.Readings, s.Hi, s.Lo)
			}
			haveSeries = true
			continue
		}
		hist.Extra = append(hist.Extra, f)
	}

	return hist, nil
}
