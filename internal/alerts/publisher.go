package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"beanbee-engine/internal/domain"
)

// AlertChannel is the Redis pub/sub channel the delivery subsystem listens on.
const AlertChannel = "beanbee:alerts"

// Publisher pushes freshly persisted alerts to the hot path.
type Publisher interface {
	Publish(ctx context.Context, a *domain.AlertEvent) error
}

// wireAlert is the pub/sub payload shape.
type wireAlert struct {
	ID            int64           `json:"id"`
	AlertType     string          `json:"alert_type"`
	TokenAddress  string          `json:"token_address,omitempty"`
	TokenSymbol   string          `json:"token_symbol,omitempty"`
	WalletAddress string          `json:"wallet_address,omitempty"`
	Title         string          `json:"title"`
	Message       string          `json:"message,omitempty"`
	BeeScore      int16           `json:"bee_score"`
	AmountUSD     decimal.Decimal `json:"amount_usd"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	CreatedAt     time.Time       `json:"created_at"`
}

// RedisPublisher publishes alerts on a Redis channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher creates a publisher on the given channel. An empty
// channel name uses AlertChannel.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = AlertChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

// Publish sends the alert to the channel. Delivery is best effort from the
// engine's point of view; the durable row is already written.
func (p *RedisPublisher) Publish(ctx context.Context, a *domain.AlertEvent) error {
	payload, err := json.Marshal(wireAlert{
		ID:            a.ID,
		AlertType:     string(a.AlertType),
		TokenAddress:  a.TokenAddress,
		TokenSymbol:   a.TokenSymbol,
		WalletAddress: a.WalletAddress,
		Title:         a.Title,
		Message:       a.Message,
		BeeScore:      a.BeeScore,
		AmountUSD:     a.AmountUSD,
		ChangePercent: a.ChangePercent,
		CreatedAt:     a.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	return nil
}

var _ Publisher = (*RedisPublisher)(nil)

// NopPublisher drops alerts. Used when no Redis endpoint is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *domain.AlertEvent) error { return nil }

var _ Publisher = NopPublisher{}
