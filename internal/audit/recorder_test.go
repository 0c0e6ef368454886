package audit

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/nft-registry/internal/domain"
	"github.com/feral-file/nft-registry/internal/logger"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// fakePublisher records delivery attempts and can be toggled to fail.
type fakePublisher struct {
	mu        sync.Mutex
	failing   bool
	attempts  int
	published []uint64
	closed    bool
}

func (p *fakePublisher) Publish(_ context.Context, record *Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attempts++
	if p.failing {
		return errors.New("sink unavailable")
	}
	p.published = append(p.published, record.Sequence)
	return nil
}

func (p *fakePublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *fakePublisher) setFailing(failing bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failing = failing
}

func (p *fakePublisher) attemptCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}

func (p *fakePublisher) sequences() []uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]uint64(nil), p.published...)
}

func (p *fakePublisher) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func record(seq uint64) *Record {
	return &Record{
		Sequence: seq,
		Event: domain.TxEvent{
			Caller:    "alice",
			Operation: domain.OpTransfer,
		},
	}
}

func waitForAttempts(t *testing.T, publisher *fakePublisher, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return publisher.attemptCount() >= n
	}, 2*time.Second, 5*time.Millisecond)
}

func TestRecorderDeliversInOrder(t *testing.T) {
	publisher := &fakePublisher{}
	recorder := NewRecorder(publisher)

	recorder.Record(record(1))
	recorder.Record(record(2))
	recorder.Record(record(3))
	recorder.Close()

	assert.Equal(t, []uint64{1, 2, 3}, publisher.sequences())
	assert.True(t, publisher.isClosed())
}

func TestRecorderRetriesParkedRecordFirst(t *testing.T) {
	publisher := &fakePublisher{failing: true}
	recorder := NewRecorder(publisher)

	recorder.Record(record(1))
	waitForAttempts(t, publisher, 1)

	publisher.setFailing(false)
	recorder.Record(record(2))
	recorder.Close()

	// The parked record goes out before the one submitted after it.
	assert.Equal(t, []uint64{1, 2}, publisher.sequences())
}

func TestRecorderDropsNewRecordWhenSlotOccupied(t *testing.T) {
	publisher := &fakePublisher{failing: true}
	recorder := NewRecorder(publisher)

	recorder.Record(record(1))
	waitForAttempts(t, publisher, 1)

	// Retry of 1 fails and re-parks it; 2 fails, the slot is taken, 2 is
	// dropped.
	recorder.Record(record(2))
	waitForAttempts(t, publisher, 3)

	publisher.setFailing(false)
	recorder.Record(record(3))
	recorder.Close()

	assert.Equal(t, []uint64{1, 3}, publisher.sequences())
}
