package arena

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	recorderQueue    = 1024
	recorderBatch    = 50
	recorderInterval = 5 * time.Second
)

// Recorder persists match events with batched background writes. It
// implements EventRecorder; Record never blocks the tick.
type Recorder struct {
	db      *DB
	log     *slog.Logger
	events  chan Event
	stop    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	dropped atomic.Int64
}

// NewRecorder creates and starts the background writer
func NewRecorder(db *DB, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	r := &Recorder{
		db:     db,
		log:    log,
		events: make(chan Event, recorderQueue),
		stop:   make(chan struct{}),
	}
	r.wg.Add(1)
	go r.writer()
	return r
}

// Record enqueues an event for async persistence
func (r *Recorder) Record(ev Event) {
	select {
	case r.events <- ev:
	default:
		// queue full: drop rather than stall the game loop
		r.dropped.Add(1)
	}
}

// Dropped returns how many events were discarded because the queue was full
func (r *Recorder) Dropped() int64 { return r.dropped.Load() }

// Stop flushes everything queued so far and stops the writer.
// Record must not be called after Stop.
func (r *Recorder) Stop() {
	r.once.Do(func() { close(r.stop) })
	r.wg.Wait()
}

func (r *Recorder) writer() {
	defer r.wg.Done()

	batch := make([]Event, 0, recorderBatch)
	ticker := time.NewTicker(recorderInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-r.events:
			batch = append(batch, ev)
			if len(batch) >= recorderBatch {
				r.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				r.flush(batch)
				batch = batch[:0]
			}
		case <-r.stop:
			for {
				select {
				case ev := <-r.events:
					batch = append(batch, ev)
				default:
					r.flush(batch)
					return
				}
			}
		}
	}
}

func (r *Recorder) flush(batch []Event) {
	if len(batch) == 0 {
		return
	}
	if err := r.db.InsertEvents(batch); err != nil {
		r.log.Error("event flush failed", "events", len(batch), "err", err)
	}
}
