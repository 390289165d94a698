package mail

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Worker drives periodic queue sweeps in the background. Multiple workers may
// run against the same queue; the per-entry claim keeps them from colliding.
type Worker struct {
	svc      *Service
	interval time.Duration
	limit    int
	id       string

	stop chan struct{}
	done chan struct{}
}

// NewWorker creates a sweeper with its own worker id.
func NewWorker(svc *Service, interval time.Duration, limit int) *Worker {
	return &Worker{
		svc:      svc,
		interval: interval,
		limit:    limit,
		id:       uuid.New().String(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. The first sweep runs immediately.
func (w *Worker) Start() {
	log.Info().Str("worker_id", w.id).Dur("interval", w.interval).Msg("Starting email queue worker")
	go w.run()
}

func (w *Worker) run() {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep()
	for {
		select {
		case <-ticker.C:
			w.sweep()
		case <-w.stop:
			return
		}
	}
}

func (w *Worker) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), w.interval)
	defer cancel()

	processed, err := w.svc.ProcessQueue(ctx, w.limit, w.id)
	if err != nil {
		log.Error().Err(err).Str("worker_id", w.id).Msg("Queue sweep failed")
		return
	}
	if processed > 0 {
		log.Info().Str("worker_id", w.id).Int("processed", processed).Msg("Queue sweep finished")
	}
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (w *Worker) Stop() {
	close(w.stop)
	<-w.done
	log.Info().Str("worker_id", w.id).Msg("Email queue worker stopped")
}
