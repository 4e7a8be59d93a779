// Package ratelimit は固定ウィンドウ方式のレート制限を提供します。
// カウンタは Redis か、単一プロセス用のメモリストアに保存します。
package ratelimit

import (
	"context"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Store はキーごとのカウンタを保持します。
type Store interface {
	// Increment はカウンタを一つ増やし、増加後の値とウィンドウの終了時刻を返します。
	// キーが無ければ window の長さで新しいウィンドウを始めます。
	Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error)
	// Decrement はウィンドウが残っていればカウンタを一つ減らします。
	Decrement(ctx context.Context, key string) error
}

type memoryEntry struct {
	count   int64
	resetAt time.Time
}

// MemoryStore はプロセス内のカウンタです。複数インスタンス間では共有されません。
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
	sweepAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry), now: time.Now}
}

// WithClock は時刻の取得元を差し替えて s 自身を返します。
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	e, ok := s.entries[key]
	if !ok || !now.Before(e.resetAt) {
		e = &memoryEntry{resetAt: now.Add(window)}
		s.entries[key] = e
	}
	e.count++
	return e.count, e.resetAt, nil
}

func (s *MemoryStore) Decrement(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && s.now().Before(e.resetAt) && e.count > 0 {
		e.count--
	}
	return nil
}

// sweep は期限切れのエントリを一分に一度まとめて削除します。
func (s *MemoryStore) sweep(now time.Time) {
	if now.Before(s.sweepAt) {
		return
	}
	for k, e := range s.entries {
		if !now.Before(e.resetAt) {
			delete(s.entries, k)
		}
	}
	s.sweepAt = now.Add(time.Minute)
}

// RedisStore は INCR と PEXPIRE で複数インスタンス間にカウンタを共有します。
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "rl:"}
}

// NewRedisClient はクライアントを作成し、疎通を確認します。
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	key = s.prefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, err
	}

	remaining := ttl.Val()
	if remaining < 0 {
		// 初回、または期限の無いキー
		if err := s.client.PExpire(ctx, key, window).Err(); err != nil {
			return 0, time.Time{}, err
		}
		remaining = window
	}
	return incr.Val(), time.Now().Add(remaining), nil
}

var decrementScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 and tonumber(redis.call("GET", KEYS[1])) > 0 then
	return redis.call("DECR", KEYS[1])
end
return 0
`)

func (s *RedisStore) Decrement(ctx context.Context, key string) error {
	return decrementScript.Run(ctx, s.client, []string{s.prefix + key}).Err()
}
