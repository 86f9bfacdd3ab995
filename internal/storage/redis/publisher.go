package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Blup1980/tenma-DC-load/batterylog"
	"github.com/Blup1980/tenma-DC-load/internal/config"
)

const publishTimeout = 2 * time.Second

// publisher is the subset of *redis.Client the sink uses.
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// Payload is the JSON message published for each sample.
type Payload struct {
	Time     time.Time `json:"time"`
	Elapsed  float64   `json:"elapsed_s"`
	Voltage  float64   `json:"voltage_v"`
	Current  float64   `json:"current_a"`
	Capacity float64   `json:"capacity_ah"`
	Energy   float64   `json:"energy_wh"`
	Degraded bool      `json:"degraded,omitempty"`
}

// NewPayload converts a sample to its wire form.
func NewPayload(s batterylog.Sample) Payload {
	return Payload{
		Time:     s.Time,
		Elapsed:  s.Elapsed.Seconds(),
		Voltage:  s.Voltage,
		Current:  s.Current,
		Capacity: s.Capacity,
		Energy:   s.Energy,
		Degraded: s.Degraded,
	}
}

// Publisher is a batterylog.Sink that publishes samples to a Redis channel.
type Publisher struct {
	client  publisher
	channel string
	logger  *zap.Logger
}

// NewPublisher connects to Redis and checks the connection with PING.
func NewPublisher(cfg config.RedisConfig, logger *zap.Logger) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("redis is not enabled")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return newPublisher(rdb, cfg.Channel, logger), nil
}

func newPublisher(client publisher, channel string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{client: client, channel: channel, logger: logger}
}

// Write publishes one sample.
func (p *Publisher) Write(s batterylog.Sample) error {
	data, err := json.Marshal(NewPayload(s))
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		p.logger.Error("failed to publish sample", zap.String("channel", p.channel), zap.Error(err))
		return fmt.Errorf("redis publish: %w", err)
	}

	p.logger.Debug("sample published", zap.String("channel", p.channel))
	return nil
}

// Close closes the Redis connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}
