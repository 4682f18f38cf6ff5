// Package dispatch executes moderation action requests. A small worker pool
// drains a queue of requests; deletions and immediate sends go straight to
// the executor, while batch-flagged sends are coalesced per channel and
// flushed once per second as combined messages.
package dispatch

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warden/mod-bot/internal/metrics"
	"github.com/warden/mod-bot/internal/model"
)

// Executor performs the platform side effects of action requests.
type Executor interface {
	DeleteMessage(ctx context.Context, channelID, messageID model.Snowflake) error
	SendMessage(ctx context.Context, channelID model.Snowflake, content string) error
}

// ResultFunc receives the outcome of each executed request. May be nil.
type ResultFunc func(model.ActionResult)

const (
	defaultWorkers   = 4
	defaultQueueSize = 1024
	flushInterval    = time.Second
)

// Dispatcher owns the action queue and the per-channel send batcher.
type Dispatcher struct {
	exec    Executor
	onDone  ResultFunc
	queue   chan model.ActionRequest
	workers int
	batch   *batcher
}

// New creates a dispatcher over the given executor. onDone may be nil.
func New(exec Executor, onDone ResultFunc) *Dispatcher {
	return &Dispatcher{
		exec:    exec,
		onDone:  onDone,
		queue:   make(chan model.ActionRequest, defaultQueueSize),
		workers: defaultWorkers,
		batch:   newBatcher(),
	}
}

// Enqueue queues requests for execution. Blocks if the queue is full.
func (d *Dispatcher) Enqueue(reqs []model.ActionRequest) {
	for _, req := range reqs {
		d.queue <- req
		metrics.DispatchQueueSize.Inc()
	}
}

// Run starts the worker pool and the batch flush loop, blocking until ctx
// is done. Pending batches are flushed once more on shutdown.
func (d *Dispatcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.work(ctx)
		}()
	}

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Workers first: one may still be batching a request, and
			// the final flush has to see it.
			wg.Wait()
			d.flush(context.Background())
			log.Println("[dispatch] stopped")
			return
		case <-ticker.C:
			d.flush(ctx)
		}
	}
}

func (d *Dispatcher) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-d.queue:
			metrics.DispatchQueueSize.Dec()
			d.handle(ctx, req)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, req model.ActionRequest) {
	var err error
	switch req.Kind {
	case model.ActionDelete:
		err = d.exec.DeleteMessage(ctx, req.ChannelID, req.MessageID)
	case model.ActionSendMessage:
		if req.Batch {
			d.batch.add(req.ChannelID, req.Content)
			return
		}
		err = d.exec.SendMessage(ctx, req.ChannelID, req.Content)
	default:
		log.Printf("[dispatch] unknown action kind %q for request %s", req.Kind, req.ID)
		return
	}
	d.report(req, err)
}

func (d *Dispatcher) report(req model.ActionRequest, err error) {
	result := model.ActionResult{RequestID: req.ID, Kind: req.Kind}
	if err != nil {
		result.Error = err.Error()
		metrics.ActionsTotal.WithLabelValues(string(req.Kind), "error").Inc()
		log.Printf("[dispatch] %s failed for request %s: %v", req.Kind, req.ID, err)
	} else {
		metrics.ActionsTotal.WithLabelValues(string(req.Kind), "ok").Inc()
	}
	if d.onDone != nil {
		d.onDone(result)
	}
}

func (d *Dispatcher) flush(ctx context.Context) {
	for channel, blobs := range d.batch.drain() {
		for _, content := range blobs {
			if err := d.exec.SendMessage(ctx, channel, content); err != nil {
				metrics.ActionsTotal.WithLabelValues(string(model.ActionSendMessage), "error").Inc()
				log.Printf("[dispatch] batched send to %s failed: %v", channel, err)
				continue
			}
			metrics.ActionsTotal.WithLabelValues(string(model.ActionSendMessage), "ok").Inc()
		}
	}
}
