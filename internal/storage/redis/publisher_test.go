package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Blup1980/tenma-DC-load/batterylog"
	"github.com/Blup1980/tenma-DC-load/internal/config"
)

type fakeClient struct {
	channel  string
	messages [][]byte
	err      error
	closed   bool
}

func (f *fakeClient) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "publish", channel, message)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.channel = channel
	f.messages = append(f.messages, message.([]byte))
	cmd.SetVal(1)
	return cmd
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_Write(t *testing.T) {
	client := &fakeClient{}
	p := newPublisher(client, "tenma:samples", nil)

	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, p.Write(batterylog.Sample{
		Time: at, Elapsed: 90 * time.Second, Voltage: 12.5, Current: 2, Capacity: 0.05, Energy: 0.625,
	}))

	assert.Equal(t, "tenma:samples", client.channel)
	require.Len(t, client.messages, 1)

	var got Payload
	require.NoError(t, json.Unmarshal(client.messages[0], &got))
	assert.Equal(t, Payload{Time: at, Elapsed: 90, Voltage: 12.5, Current: 2, Capacity: 0.05, Energy: 0.625}, got)
	assert.NotContains(t, string(client.messages[0]), "degraded")
}

func TestPublisher_WriteError(t *testing.T) {
	p := newPublisher(&fakeClient{err: errors.New("connection refused")}, "tenma:samples", nil)

	err := p.Write(batterylog.Sample{})
	assert.ErrorContains(t, err, "connection refused")
}

func TestPublisher_Close(t *testing.T) {
	client := &fakeClient{}
	p := newPublisher(client, "c", nil)

	require.NoError(t, p.Close())
	assert.True(t, client.closed)
}

func TestNewPublisher_Disabled(t *testing.T) {
	_, err := NewPublisher(config.RedisConfig{}, nil)
	assert.Error(t, err)
}
