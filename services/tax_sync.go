package services

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrTaxWriteThrough marks a failure to persist a recomputed PST. The stored
// value may now disagree with what the calculator shows.
var ErrTaxWriteThrough = errors.New("pst write-through failed")

// FieldWriter persists a single item field. The store provides it; the
// calculator only ever calls it.
type FieldWriter func(ctx context.Context, itemID, field string, value any) error

// SyncTax compares an item before and after an edit and writes PST back when
// needed:
//   - automatic category after the edit: PST is re-derived and persisted if the
//     category, quantity or unit price changed, or the stored value is stale;
//   - category moved off an automatic category: PST is reset to 0.
//
// The returned item always carries the correct PST, even when the write fails.
func (e *Estimator) SyncTax(ctx context.Context, before, after Item, write FieldWriter) (Item, error) {
	wasAuto := e.Rules.IsAutomatic(before.Category)
	isAuto := e.Rules.IsAutomatic(after.Category)

	var pst float64
	switch {
	case isAuto:
		pst = e.ComputeAutoTax(after)
		changed := before.Category != after.Category ||
			before.Quantity != after.Quantity ||
			before.UnitPrice != after.UnitPrice
		if !changed && math.Abs(after.PST-pst) < 1e-9 {
			return after, nil
		}
	case wasAuto:
		pst = 0
	default:
		return after, nil
	}

	after.PST = pst
	if write == nil {
		return after, nil
	}
	if err := write(ctx, after.ID, "pst", pst); err != nil {
		return after, fmt.Errorf("%w: item %s: %w", ErrTaxWriteThrough, after.ID, err)
	}
	return after, nil
}
