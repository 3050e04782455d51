package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"agartpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// NewShiftRepairHandler re-applies shift totals increments that failed after
// their sale committed. The increment is conditional on the shift still being
// open; if it closed in the meantime the money is gone from the running totals
// for good, which is logged loudly and the job is dropped — closing already
// froze the reconciliation snapshot.
func NewShiftRepairHandler(shifts repository.ShiftRepository) Handler {
	return func(ctx context.Context, job *Job) error {
		var payload ShiftRepairPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("decoding shift repair payload: %w", err)
		}

		shiftID, err := uuid.Parse(payload.ShiftID)
		if err != nil {
			return fmt.Errorf("invalid shift id %q: %w", payload.ShiftID, err)
		}
		amount, err := decimal.NewFromString(payload.Amount)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", payload.Amount, err)
		}

		ok, err := shifts.IncrementTotals(ctx, shiftID, amount, payload.Method)
		if err != nil {
			return err
		}
		if !ok {
			log.Error().
				Str("shift_id", payload.ShiftID).
				Str("sale_id", payload.SaleID).
				Str("amount", payload.Amount).
				Msg("shift closed before repair could land, totals are short this sale")
			return nil
		}

		log.Info().
			Str("shift_id", payload.ShiftID).
			Str("sale_id", payload.SaleID).
			Str("amount", payload.Amount).
			Msg("shift totals repaired")
		return nil
	}
}
