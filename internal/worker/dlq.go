package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

const DeadLetterQueue = "jobs:dead"

type deadJob struct {
	Job      *Job      `json:"job"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}

// toDeadLetter parks an exhausted job for manual inspection. Entries carry the
// final error so ops can triage without replaying.
func (p *Pool) toDeadLetter(ctx context.Context, job *Job, cause error) {
	entry := deadJob{Job: job, Error: cause.Error(), FailedAt: time.Now()}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("dead letter marshal failed, job lost")
		return
	}
	if err := p.rdb.LPush(ctx, DeadLetterQueue, data).Err(); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("dead letter push failed, job lost")
		return
	}
	log.Error().
		Str("job_id", job.ID).
		Str("queue", job.Queue).
		Str("cause", cause.Error()).
		Msg("job moved to dead letter queue")
}
