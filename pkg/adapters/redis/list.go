package redis

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix is prepended to list names unless WithPrefix overrides it.
const DefaultPrefix = "reshape:"

// List implements ports.RecordReader and ports.RecordWriter over a Redis
// list holding one JSON document per element.
type List struct {
	client  *backend.Client
	owned   bool
	key     string
	prefix  string
	ttl     time.Duration
	consume bool
	pos     int64
}

// Option configures a List.
type Option func(*List)

// WithTTL refreshes the list expiration on every write. Zero disables it.
func WithTTL(ttl time.Duration) Option {
	return func(l *List) {
		l.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(l *List) {
		l.prefix = prefix
	}
}

// WithConsume makes Read remove the records it returns, so several readers
// can share one list as a work queue.
func WithConsume() Option {
	return func(l *List) {
		l.consume = true
	}
}

// New connects to Redis and returns the list named name. Close closes the
// connection.
func New(addr, password string, db int, name string, opts ...Option) *List {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	l := NewFromClient(client, name, opts...)
	l.owned = true
	return l
}

// NewFromClient returns the list named name on an existing client. Close
// leaves the client open.
func NewFromClient(client *backend.Client, name string, opts ...Option) *List {
	l := &List{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.key = l.prefix + name
	return l
}

// Key returns the Redis key of the list.
func (l *List) Key() string { return l.key }

// Len returns the number of records currently stored.
func (l *List) Len(ctx context.Context) (int64, error) {
	n, err := l.client.LLen(ctx, l.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}
	return n, nil
}

// Read returns up to max records from the head of the list.
func (l *List) Read(ctx context.Context, max int) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stop := int64(-1)
	if max > 0 {
		stop = int64(max) - 1
	}

	var raw []string
	if l.consume {
		var rng *backend.StringSliceCmd
		_, err := l.client.TxPipelined(ctx, func(p backend.Pipeliner) error {
			rng = p.LRange(ctx, l.key, 0, stop)
			if stop == -1 {
				p.Del(ctx, l.key)
			} else {
				p.LTrim(ctx, l.key, stop+1, -1)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("redis error: %w", err)
		}
		raw = rng.Val()
	} else {
		end := int64(-1)
		if stop >= 0 {
			end = l.pos + stop
		}
		var err error
		raw, err = l.client.LRange(ctx, l.key, l.pos, end).Result()
		if err != nil {
			return nil, fmt.Errorf("redis error: %w", err)
		}
		l.pos += int64(len(raw))
	}

	if len(raw) == 0 {
		return nil, io.EOF
	}
	batch := make([]map[string]any, len(raw))
	for i, s := range raw {
		dec := json.NewDecoder(strings.NewReader(s))
		dec.UseNumber()
		if err := dec.Decode(&batch[i]); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
	}
	return batch, nil
}

// Write appends records to the tail of the list.
func (l *List) Write(ctx context.Context, records []map[string]any) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	values := make([]any, len(records))
	for i, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal record: %w", err)
		}
		values[i] = b
	}

	_, err := l.client.TxPipelined(ctx, func(p backend.Pipeliner) error {
		p.RPush(ctx, l.key, values...)
		if l.ttl > 0 {
			p.Expire(ctx, l.key, l.ttl)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}
	return len(records), nil
}

// Close closes the client if the list created it.
func (l *List) Close() error {
	if !l.owned {
		return nil
	}
	return l.client.Close()
}
