package execution

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// PaperPlacer acknowledges orders without touching any venue. Used by the
// -dry-run flag and in tests.
type PaperPlacer struct {
	log  zerolog.Logger
	next atomic.Int64
}

// NewPaperPlacer wraps a logger for synthetic order acknowledgements.
func NewPaperPlacer(log zerolog.Logger) *PaperPlacer {
	return &PaperPlacer{log: log}
}

// PlaceOrder logs the would-be order and returns a synthetic ack.
func (p *PaperPlacer) PlaceOrder(_ context.Context, call OrderCall) (Ack, error) {
	id := p.next.Add(1)
	p.log.Info().
		Str("sym", call.Symbol).
		Str("side", string(call.Side)).
		Str("type", string(call.Type)).
		Float64("qty", call.Quantity).
		Int64("order_id", id).
		Msg("paper fill")
	return Ack{OrderID: id, ClientOrderID: call.ClientOrderID, Status: "FILLED"}, nil
}
