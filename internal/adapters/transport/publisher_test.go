package transport

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"plateops/pkg/domain"
)

func TestNewPublisherRequiresInstanceName(t *testing.T) {
	if _, err := NewPublisher(&redis.Options{}, ""); err == nil {
		t.Fatal("empty instance name should be rejected")
	}
}

func TestChannelIsInstanceScoped(t *testing.T) {
	mr := miniredis.RunT(t)
	pub, err := NewPublisher(&redis.Options{Addr: mr.Addr()}, "lab-a")
	if err != nil {
		t.Fatalf("NewPublisher returned %v", err)
	}
	defer func() { _ = pub.Close() }()
	if got := pub.Channel(); got != "plateops:lab-a:warehouse_events" {
		t.Fatalf("Channel() = %q", got)
	}
}

func TestPublishDeliversPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	pub, err := NewPublisher(&redis.Options{Addr: mr.Addr()}, "lab-a")
	if err != nil {
		t.Fatalf("NewPublisher returned %v", err)
	}
	defer func() { _ = pub.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	subscriber := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = subscriber.Close() }()
	sub := subscriber.Subscribe(ctx, pub.Channel())
	defer func() { _ = sub.Close() }()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	payload := domain.WarehousePayload{
		UUID:           "b3c7d1a0-52c4-4f5e-9e0a-7a1f6f40c3de",
		EventType:      "beckman_source_completed",
		OccurredAt:     time.Date(2021, 3, 4, 10, 15, 0, 0, time.UTC),
		UserIdentifier: "jdoe",
	}
	if err := pub.Publish(ctx, payload); err != nil {
		t.Fatalf("Publish returned %v", err)
	}

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("ReceiveMessage returned %v", err)
	}
	var got domain.WarehousePayload
	if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.UUID != payload.UUID || got.EventType != payload.EventType || got.UserIdentifier != "jdoe" {
		t.Fatalf("payload = %+v", got)
	}
}

func TestPing(t *testing.T) {
	mr := miniredis.RunT(t)
	pub, err := NewPublisher(&redis.Options{Addr: mr.Addr()}, "lab-a")
	if err != nil {
		t.Fatalf("NewPublisher returned %v", err)
	}
	defer func() { _ = pub.Close() }()
	if err := pub.Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned %v", err)
	}
}
