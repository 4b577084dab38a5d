package ingestion

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"beanbee-engine/internal/domain"
	"beanbee-engine/internal/observability"
)

// Sink receives decoded events. Satisfied by the engine dispatcher; Enqueue
// blocking on a full worker queue is the backpressure mechanism.
type Sink interface {
	Enqueue(ctx context.Context, ev domain.Event) error
}

// WSSourceConfig configures stream connection behavior.
type WSSourceConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is the per-message read deadline.
	ReadTimeout time.Duration
	// WriteTimeout is the deadline for control frames.
	WriteTimeout time.Duration
	// HandshakeTimeout bounds the initial dial.
	HandshakeTimeout time.Duration
}

// DefaultWSConfig returns default stream configuration.
func DefaultWSConfig() WSSourceConfig {
	return WSSourceConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HandshakeTimeout:  10 * time.Second,
	}
}

// WSSource consumes the normalized event stream over WebSocket and feeds the
// sink. Reconnects with exponential backoff; a decode failure skips the
// message, it never tears down the connection.
type WSSource struct {
	endpoint string
	config   WSSourceConfig
	sink     Sink
	log      *logrus.Entry
	metrics  *observability.Metrics
}

// NewWSSource creates a stream source. Metrics may be nil.
func NewWSSource(endpoint string, config *WSSourceConfig, sink Sink, metrics *observability.Metrics, log *logrus.Entry) *WSSource {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}
	return &WSSource{
		endpoint: endpoint,
		config:   cfg,
		sink:     sink,
		log:      log,
		metrics:  metrics,
	}
}

// Run consumes the stream until the context is canceled. Returns nil on
// cancellation; connection errors are retried internally.
func (s *WSSource) Run(ctx context.Context) error {
	delay := s.config.ReconnectDelay

	for {
		conn, err := s.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.WithError(err).WithField("delay", delay).Warn("stream dial failed, retrying")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
			delay *= 2
			if delay > s.config.MaxReconnectDelay {
				delay = s.config.MaxReconnectDelay
			}
			continue
		}

		// Connected; reset backoff and consume until the connection drops.
		delay = s.config.ReconnectDelay
		s.consume(ctx, conn)
		conn.Close()

		if ctx.Err() != nil {
			return nil
		}
		if s.metrics != nil {
			s.metrics.StreamReconnects.Inc()
		}
		s.log.Info("stream connection lost, reconnecting")
	}
}

func (s *WSSource) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: s.config.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	return conn, err
}

// consume reads messages until the connection fails or the context is done.
func (s *WSSource) consume(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)

	// The read loop below blocks in ReadMessage; closing the connection on
	// cancellation is what unblocks it.
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(s.config.WriteTimeout))
			conn.Close()
		case <-done:
		}
	}()

	go s.pingLoop(ctx, conn, done)

	for {
		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.log.WithError(err).Debug("stream read failed")
			}
			return
		}

		if s.metrics != nil {
			s.metrics.StreamMessagesReceived.Inc()
		}

		ev, err := Decode(message)
		if err != nil {
			if s.metrics != nil {
				s.metrics.StreamDecodeErrors.Inc()
			}
			s.log.WithError(err).Warn("dropping undecodable stream message")
			continue
		}

		if err := s.sink.Enqueue(ctx, ev); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.WithError(err).WithField("kind", ev.Kind()).Error("failed to enqueue event")
		}
	}
}

func (s *WSSource) pingLoop(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				// Connection might be dead, the reader will notice.
				return
			}
		}
	}
}
