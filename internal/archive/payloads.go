package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"
)

// PayloadArchive writes rendered warehouse payloads into a Store under a
// stable per-event key.
type PayloadArchive struct {
	store Store
}

// NewPayloadArchive wraps a Store for payload archiving.
func NewPayloadArchive(store Store) *PayloadArchive {
	return &PayloadArchive{store: store}
}

// ArchivePayload stores the payload under warehouse/<event uuid>.json.
// Storing twice for the same event fails, which matches the one-shot
// processing model.
func (a *PayloadArchive) ArchivePayload(ctx context.Context, eventUUID string, payload []byte) error {
	key := fmt.Sprintf("warehouse/%s.json", eventUUID)
	_, err := a.store.Put(ctx, key, bytes.NewReader(payload), PutOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("archive payload %s: %w", key, err)
	}
	return nil
}

// PayloadURL returns a time-limited read URL for an archived payload, for
// handing to operators investigating a failed event.
func (a *PayloadArchive) PayloadURL(ctx context.Context, eventUUID string, expiry time.Duration) (string, error) {
	return a.store.SignedURL(ctx, fmt.Sprintf("warehouse/%s.json", eventUUID), expiry)
}

// Payload reads back a previously archived payload.
func (a *PayloadArchive) Payload(ctx context.Context, eventUUID string) ([]byte, error) {
	key := fmt.Sprintf("warehouse/%s.json", eventUUID)
	_, rc, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}
