// Package risk encodes guard-rails applied before an order leaves the process.
package risk

// Limits caps how much size a single dispatched order may take on. Zero
// values disable the corresponding check.
type Limits struct {
	MaxQuantityPerOrder float64
	MaxNotionalPerTrade float64
}

// Allow reports whether an order of the given quantity and reference price is
// within limits. The notional check is skipped when no price is known, as
// with market orders built without a price sample.
func (l Limits) Allow(quantity, price float64) bool {
	if l.MaxQuantityPerOrder > 0 && quantity > l.MaxQuantityPerOrder {
		return false
	}
	if l.MaxNotionalPerTrade > 0 && price > 0 && quantity*price > l.MaxNotionalPerTrade {
		return false
	}
	return true
}
