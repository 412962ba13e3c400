package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisBroadcaster publishes alert batches over Redis pub/sub so the
// dashboard's WebSocket bridge can relay them to connected clients.
type RedisBroadcaster struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewRedisBroadcaster creates a broadcaster over an existing Redis client.
func NewRedisBroadcaster(client *redis.Client, logger *logrus.Logger) *RedisBroadcaster {
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisBroadcaster{client: client, logger: logger}
}

// Publish JSON-encodes the payload and publishes it on the given channel.
func (rb *RedisBroadcaster) Publish(ctx context.Context, channel string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode broadcast payload: %w", err)
	}
	if err := rb.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}
	rb.logger.WithFields(logrus.Fields{
		"channel": channel,
		"bytes":   len(data),
	}).Debug("Published broadcast message")
	return nil
}

// CompositeBroadcaster fans a publish out to several delivery channels.
// Each channel's failure is independent; the first error is returned after
// all channels have been attempted.
type CompositeBroadcaster struct {
	targets []Broadcaster
}

// NewCompositeBroadcaster creates a fan-out broadcaster.
func NewCompositeBroadcaster(targets ...Broadcaster) *CompositeBroadcaster {
	return &CompositeBroadcaster{targets: targets}
}

// Publish delivers the payload to every target.
func (cb *CompositeBroadcaster) Publish(ctx context.Context, channel string, payload interface{}) error {
	var firstErr error
	for _, target := range cb.targets {
		if err := target.Publish(ctx, channel, payload); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
