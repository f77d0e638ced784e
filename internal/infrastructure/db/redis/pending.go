package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// pendingTTL bounds how long a primary-credential success waits for its
// access code before the attempt counts as abandoned.
const pendingTTL = 10 * time.Minute

// PendingLoginStore records which users are between primary-credential
// success and access-code verification. Keys expire on abandonment.
// Key format: pending2fa:<user_id>
type PendingLoginStore struct {
	client *redis.Client
}

// NewPendingLoginStore creates a PendingLoginStore wrapping the given client.
func NewPendingLoginStore(client *redis.Client) *PendingLoginStore {
	return &PendingLoginStore{client: client}
}

// Put marks the user as awaiting their second factor.
func (p *PendingLoginStore) Put(ctx context.Context, userID string) error {
	if err := p.client.Set(ctx, p.key(userID), "1", pendingTTL).Err(); err != nil {
		return fmt.Errorf("pending put: %w", err)
	}
	return nil
}

// Exists reports whether the user has a live pending login.
func (p *PendingLoginStore) Exists(ctx context.Context, userID string) (bool, error) {
	n, err := p.client.Exists(ctx, p.key(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("pending check: %w", err)
	}
	return n > 0, nil
}

// Delete clears the marker once verification terminates.
func (p *PendingLoginStore) Delete(ctx context.Context, userID string) error {
	if err := p.client.Del(ctx, p.key(userID)).Err(); err != nil {
		return fmt.Errorf("pending delete: %w", err)
	}
	return nil
}

func (p *PendingLoginStore) key(userID string) string {
	return "pending2fa:" + userID
}
