package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/feral-file/nft-registry/internal/adapter"
	"github.com/feral-file/nft-registry/internal/logger"
)

// Config holds the configuration for the NATS JetStream audit sink
type Config struct {
	URL            string
	StreamName     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	ConnectTimeout time.Duration
}

type jetStreamPublisher struct {
	nc         adapter.NatsConn
	js         adapter.JetStream
	streamName string
	json       adapter.JSON
}

// NewJetStreamPublisher connects to NATS JetStream and returns a Publisher
// for audit records. The initial connection is retried with exponential
// backoff up to ConnectTimeout.
func NewJetStreamPublisher(cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (Publisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	var nc adapter.NatsConn
	var js adapter.JetStream

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = cfg.ConnectTimeout
	err := backoff.Retry(func() error {
		var err error
		nc, js, err = natsJS.Connect(cfg.URL, opts...)
		return err
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	return &jetStreamPublisher{
		nc:         nc,
		js:         js,
		streamName: cfg.StreamName,
		json:       jsonAdapter,
	}, nil
}

// Publish sends one audit record to JetStream
func (p *jetStreamPublisher) Publish(ctx context.Context, record *Record) error {
	data, err := p.json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	subject := p.buildSubject(record)

	_, err = p.js.Publish(ctx, subject, data)
	if err != nil {
		return fmt.Errorf("failed to publish audit record: %w", err)
	}

	return nil
}

// buildSubject constructs the NATS subject for the record.
// Format: audit.<operation>, e.g. audit.mint, audit.transfer
func (p *jetStreamPublisher) buildSubject(record *Record) string {
	return fmt.Sprintf("audit.%s", record.Event.Operation)
}

// Close closes the NATS connection
func (p *jetStreamPublisher) Close() {
	if p.nc == nil {
		return
	}

	p.nc.Close()
}
