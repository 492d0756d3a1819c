package alertredis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"docvault/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Mailbox stores per-recipient alerts as capped Redis lists, newest at the
// head. Every mutation runs as a Lua script so concurrent appends from
// unrelated actions serialize inside Redis and the capacity trim can never
// lose a concurrent write.
type Mailbox struct {
	client *redis.Client
	clock  func() time.Time
}

var enqueueScript = redis.NewScript(`
redis.call("LPUSH", KEYS[1], ARGV[1])
redis.call("LTRIM", KEYS[1], 0, tonumber(ARGV[2]) - 1)
return redis.call("LLEN", KEYS[1])
`)

var markReadScript = redis.NewScript(`
local items = redis.call("LRANGE", KEYS[1], 0, -1)
for i, raw in ipairs(items) do
  local alert = cjson.decode(raw)
  if alert.id == ARGV[1] then
    if not alert.read then
      alert.read = true
      redis.call("LSET", KEYS[1], i - 1, cjson.encode(alert))
    end
    return 1
  end
end
return 0
`)

var clearScript = redis.NewScript(`
local length = redis.call("LLEN", KEYS[1])
redis.call("DEL", KEYS[1])
return length
`)

var markAllReadScript = redis.NewScript(`
local items = redis.call("LRANGE", KEYS[1], 0, -1)
local count = 0
for i, raw in ipairs(items) do
  local alert = cjson.decode(raw)
  if not alert.read then
    alert.read = true
    redis.call("LSET", KEYS[1], i - 1, cjson.encode(alert))
    count = count + 1
  end
end
return count
`)

func New(addr, password string, db int) (*Mailbox, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Mailbox{client: client, clock: time.Now}, nil
}

func mailboxKey(recipient string) string {
	return "alerts:" + recipient
}

func (m *Mailbox) Enqueue(ctx context.Context, recipient string, alert domain.Alert) (domain.Alert, error) {
	if recipient == "" {
		return domain.Alert{}, domain.ErrInvalidInput
	}
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = m.clock().UTC()
	}
	alert.Recipient = recipient

	payload, err := json.Marshal(alert)
	if err != nil {
		return domain.Alert{}, err
	}
	err = enqueueScript.Run(ctx, m.client, []string{mailboxKey(recipient)},
		payload, domain.MailboxCapacity).Err()
	if err != nil {
		return domain.Alert{}, err
	}
	return alert, nil
}

func (m *Mailbox) List(ctx context.Context, recipient string, unreadOnly bool) ([]domain.Alert, error) {
	raw, err := m.client.LRange(ctx, mailboxKey(recipient), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Alert, 0, len(raw))
	for _, item := range raw {
		var alert domain.Alert
		if err := json.Unmarshal([]byte(item), &alert); err != nil {
			return nil, err
		}
		if unreadOnly && alert.Read {
			continue
		}
		out = append(out, alert)
	}
	return out, nil
}

func (m *Mailbox) MarkRead(ctx context.Context, recipient, alertID string) error {
	found, err := markReadScript.Run(ctx, m.client, []string{mailboxKey(recipient)}, alertID).Int()
	if err != nil {
		return err
	}
	if found == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (m *Mailbox) MarkAllRead(ctx context.Context, recipient string) (int, error) {
	return markAllReadScript.Run(ctx, m.client, []string{mailboxKey(recipient)}).Int()
}

func (m *Mailbox) Clear(ctx context.Context, recipient string) (int, error) {
	return clearScript.Run(ctx, m.client, []string{mailboxKey(recipient)}).Int()
}
