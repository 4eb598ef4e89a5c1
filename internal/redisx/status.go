package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/georgemunganga/framecraft-backend/internal/modules/order"
)

// statusEntry is the stored value. V orders writes: an entry never replaces a newer one.
type statusEntry struct {
	order.StatusSnapshot
	V int64 `json:"v"`
}

// setIfNewer writes ARGV[1] unless the stored entry carries a larger version.
var setIfNewer = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
  local ok, doc = pcall(cjson.decode, cur)
  if ok and type(doc) == 'table' and doc.v and tonumber(doc.v) > tonumber(ARGV[2]) then
    return 0
  end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// StatusMirror keeps a short-lived copy of each order's status in Redis.
// It is an order.Notifier for writes and an order.StatusReader for reads.
type StatusMirror struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

func NewStatusMirror(rdb redis.UniversalClient, ttl time.Duration) *StatusMirror {
	if ttl <= 0 {
		ttl = TTLStatusCache
	}
	return &StatusMirror{rdb: rdb, ttl: ttl}
}

func (m *StatusMirror) Notify(ctx context.Context, e order.Event) error {
	snap := e.Order.StatusSnapshot()
	value, err := json.Marshal(statusEntry{StatusSnapshot: snap, V: snap.UpdatedAt.UnixMicro()})
	if err != nil {
		return err
	}
	err = setIfNewer.Run(ctx, m.rdb, []string{OrderStatusKey(snap.OrderID)},
		value, snap.UpdatedAt.UnixMicro(), m.ttl.Milliseconds()).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("mirror order status %s: %w", snap.OrderID, err)
	}
	return nil
}

func (m *StatusMirror) ReadStatus(ctx context.Context, orderID string) (*order.StatusSnapshot, error) {
	b, err := m.rdb.Get(ctx, OrderStatusKey(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read order status %s: %w", orderID, err)
	}
	var entry statusEntry
	if err := json.Unmarshal(b, &entry); err != nil {
		return nil, fmt.Errorf("decode order status %s: %w", orderID, err)
	}
	return &entry.StatusSnapshot, nil
}
