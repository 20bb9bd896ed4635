// Package transport publishes rendered warehouse payloads to the event
// warehouse over Redis.
package transport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"plateops/pkg/domain"
)

// Publisher sends warehouse payloads to an instance-scoped Redis channel.
// All channels are namespaced with the instance name so side-by-side
// deployments never cross streams. Safe for concurrent use.
type Publisher struct {
	rdb          *redis.Client
	instanceName string
}

// NewPublisher creates a publisher for the given instance.
func NewPublisher(redisOpts *redis.Options, instanceName string) (*Publisher, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}
	return &Publisher{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
	}, nil
}

// Channel returns the namespaced channel warehouse payloads are published
// on.
func (p *Publisher) Channel() string {
	return fmt.Sprintf("plateops:%s:warehouse_events", p.instanceName)
}

// Publish serializes the payload and publishes it. There is no
// acknowledgment beyond transport-level success.
func (p *Publisher) Publish(ctx context.Context, payload domain.WarehousePayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serialize warehouse payload %s: %w", payload.UUID, err)
	}
	if err := p.rdb.Publish(ctx, p.Channel(), raw).Err(); err != nil {
		return fmt.Errorf("publish warehouse payload %s: %w", payload.UUID, err)
	}
	return nil
}

// Ping verifies Redis connectivity. Useful for health checks.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection. Implements io.Closer.
func (p *Publisher) Close() error {
	return p.rdb.Close()
}
