package audit

import (
	"context"
	"sync"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/feral-file/nft-registry/internal/logger"
)

// Recorder accepts committed transaction receipts and delivers them to the
// sink asynchronously, off the mutation path.
type Recorder interface {
	// Record submits one receipt for delivery. It never blocks on the sink
	// and never reports sink failures to the caller.
	Record(record *Record)
	// Close drains in-flight deliveries and releases the worker.
	Close()
}

// recorder delivers records through a single worker, so a parked retry
// always goes out before any record submitted after it. At most one
// undelivered record is held; delivery failures beyond that are dropped.
type recorder struct {
	publisher Publisher
	pool      pond.Pool

	mu      sync.Mutex
	pending *Record
}

// NewRecorder creates a recorder backed by the given publisher.
func NewRecorder(publisher Publisher) Recorder {
	return &recorder{
		publisher: publisher,
		pool:      pond.NewPool(1),
	}
}

// Record submits one receipt for asynchronous delivery.
func (r *recorder) Record(record *Record) {
	r.pool.Submit(func() {
		r.deliver(record)
	})
}

func (r *recorder) deliver(record *Record) {
	ctx := context.Background()

	// A previously failed record is always retried before the new one.
	if parked := r.takePending(); parked != nil {
		if err := r.publisher.Publish(ctx, parked); err != nil {
			logger.Error(err,
				zap.String("message", "audit retry failed"),
				zap.Uint64("sequence", parked.Sequence),
			)
			r.park(parked)
		}
	}

	if err := r.publisher.Publish(ctx, record); err != nil {
		logger.Error(err,
			zap.String("message", "audit delivery failed"),
			zap.Uint64("sequence", record.Sequence),
		)
		r.park(record)
	}
}

func (r *recorder) takePending() *Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	parked := r.pending
	r.pending = nil
	return parked
}

// park stores the record in the retry slot. The slot holds one record; when
// it is already occupied by an older failure, the newer record is dropped.
func (r *recorder) park(record *Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending != nil {
		logger.Warn("audit retry slot occupied, dropping record",
			zap.Uint64("sequence", record.Sequence),
			zap.Uint64("parked_sequence", r.pending.Sequence),
		)
		return
	}
	r.pending = record
}

// Close drains the delivery worker and closes the publisher.
func (r *recorder) Close() {
	r.pool.StopAndWait()
	r.publisher.Close()
}
