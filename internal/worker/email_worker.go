package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"agartpos/internal/infra"
)

// NewVarianceAlertHandler mails critical cash variances to the configured
// address.
func NewVarianceAlertHandler(mailer *infra.Mailer, alertEmail string) Handler {
	return func(ctx context.Context, job *Job) error {
		var payload VarianceAlertPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("decoding variance alert payload: %w", err)
		}

		subject := fmt.Sprintf("Critical cash variance: shift %s", payload.ShiftID)
		body := fmt.Sprintf(
			"Shift %s (%s) closed with a critical cash variance.\n\n"+
				"Expected cash: %s\nCounted cash:  %s\nVariance:      %s (%s%%)\n",
			payload.ShiftID, payload.StaffName,
			payload.Expected, payload.Counted, payload.Variance, payload.Percent,
		)
		return mailer.Send(alertEmail, subject, body)
	}
}
