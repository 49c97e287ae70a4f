package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"orderbot/internal/conversation"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "orderbot:draft:"

// RedisStore は下書きを JSON で保存し、TTL で失効させる。
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func key(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}

func (s *RedisStore) Get(ctx context.Context, userID int64) (conversation.Draft, bool, error) {
	raw, err := s.rdb.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return conversation.Draft{}, false, nil
	}
	if err != nil {
		return conversation.Draft{}, false, fmt.Errorf("redis get draft: %w", err)
	}
	return decode(raw)
}

// Take は GETDEL（Redis 6.2+）。複数プロセスでも先に取った方だけが確定できる。
func (s *RedisStore) Take(ctx context.Context, userID int64) (conversation.Draft, bool, error) {
	raw, err := s.rdb.GetDel(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return conversation.Draft{}, false, nil
	}
	if err != nil {
		return conversation.Draft{}, false, fmt.Errorf("redis getdel draft: %w", err)
	}
	return decode(raw)
}

func decode(raw []byte) (conversation.Draft, bool, error) {
	var d conversation.Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return conversation.Draft{}, false, fmt.Errorf("decode draft: %w", err)
	}
	if d.Fields == nil {
		d.Fields = map[conversation.Field]string{}
	}
	return d, true, nil
}

// Save のたびに TTL を延ばす（最後の入力からの経過で失効）。
func (s *RedisStore) Save(ctx context.Context, d conversation.Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.rdb.Set(ctx, key(d.UserID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID int64) error {
	if err := s.rdb.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del draft: %w", err)
	}
	return nil
}

var _ conversation.DraftStore = (*RedisStore)(nil)
