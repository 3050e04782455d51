package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueShiftRepair   = "jobs:shift-repair"
	QueueVarianceAlert = "jobs:variance-alert"

	maxAttempts = 3
)

// ShiftRepairPayload re-applies a shift totals increment that failed after its
// sale had already committed.
type ShiftRepairPayload struct {
	ShiftID string `json:"shift_id"`
	SaleID  string `json:"sale_id"`
	Amount  string `json:"amount"`
	Method  string `json:"method"`
}

// VarianceAlertPayload notifies a supervisor about a critical cash variance.
type VarianceAlertPayload struct {
	ShiftID   string `json:"shift_id"`
	StaffName string `json:"staff_name"`
	Expected  string `json:"expected"`
	Counted   string `json:"counted"`
	Variance  string `json:"variance"`
	Percent   string `json:"percent"`
}

// Job is the envelope every queue entry travels in.
type Job struct {
	ID       string          `json:"id"`
	Queue    string          `json:"queue"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
	Enqueued time.Time       `json:"enqueued"`
}

// Handler processes one job; a returned error triggers a retry.
type Handler func(ctx context.Context, job *Job) error

// Dispatcher pushes jobs onto their queues. A nil Dispatcher (no Redis) is a
// valid no-op producer — callers guard with a nil check.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	if rdb == nil {
		return nil
	}
	return &Dispatcher{rdb: rdb}
}

func (d *Dispatcher) EnqueueShiftRepair(ctx context.Context, payload ShiftRepairPayload) error {
	return d.enqueue(ctx, QueueShiftRepair, payload)
}

func (d *Dispatcher) EnqueueVarianceAlert(ctx context.Context, payload VarianceAlertPayload) error {
	return d.enqueue(ctx, QueueVarianceAlert, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{
		ID:       fmt.Sprintf("%s-%d", queue, time.Now().UnixNano()),
		Queue:    queue,
		Payload:  raw,
		Enqueued: time.Now(),
	}
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := d.rdb.LPush(ctx, queue, data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("job enqueue failed")
		return err
	}
	return nil
}

// Pool consumes the job queues with a fixed number of workers.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]Handler
	size     int
	wg       sync.WaitGroup
}

func NewPool(rdb *redis.Client, size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		rdb:      rdb,
		handlers: make(map[string]Handler),
		size:     size,
	}
}

func (p *Pool) Register(queue string, h Handler) {
	p.handlers[queue] = h
}

// Start launches the workers. They run until ctx is cancelled; Wait blocks
// until all have drained their in-flight job.
func (p *Pool) Start(ctx context.Context) {
	queues := make([]string, 0, len(p.handlers))
	for q := range p.handlers {
		queues = append(queues, q)
	}
	if len(queues) == 0 {
		return
	}

	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i, queues)
	}
	log.Info().Int("workers", p.size).Strs("queues", queues).Msg("worker pool started")
}

func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) worker(ctx context.Context, id int, queues []string) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			log.Error().Err(err).Int("worker", id).Msg("queue pop failed")
			time.Sleep(time.Second)
			continue
		}
		// BRPop returns [queue, value].
		if len(res) != 2 {
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			log.Error().Err(err).Str("queue", res[0]).Msg("malformed job dropped")
			continue
		}
		p.process(ctx, &job)
	}
}

func (p *Pool) process(ctx context.Context, job *Job) {
	handler, ok := p.handlers[job.Queue]
	if !ok {
		return
	}

	job.Attempts++
	if err := handler(ctx, job); err != nil {
		log.Warn().
			Err(err).
			Str("job_id", job.ID).
			Str("queue", job.Queue).
			Int("attempt", job.Attempts).
			Msg("job failed")

		if job.Attempts >= maxAttempts {
			p.toDeadLetter(ctx, job, err)
			return
		}
		// Straight back on the queue; a small delay spaces out retries.
		time.Sleep(time.Duration(job.Attempts) * time.Second)
		if data, mErr := json.Marshal(job); mErr == nil {
			p.rdb.LPush(ctx, job.Queue, data)
		}
	}
}
