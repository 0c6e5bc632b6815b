package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/verte-zerg/spellbee/internal/store"
)

// Key patterns. Per set, a sorted set ranks nickname keys and a hash holds
// the entry JSON.
const (
	keyRank = "spellbee:rank:"
	keyInfo = "spellbee:info:"
	keySets = "spellbee:sets"
)

// RedisOptions configures the shared board connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisBoard shares entries through Redis.
type RedisBoard struct {
	client *redis.Client
}

// NewRedisBoard connects to Redis. The connection is lazy; call Ping to check it.
func NewRedisBoard(opts RedisOptions) *RedisBoard {
	return &RedisBoard{client: redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})}
}

// Ping checks the connection.
func (b *RedisBoard) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (b *RedisBoard) Close() error {
	return b.client.Close()
}

// Submit stores e unless the player already holds a better entry. The
// comparison and write run in one optimistic transaction on the set's hash.
func (b *RedisBoard) Submit(ctx context.Context, setID string, e Entry) error {
	nickname, err := NormalizeNickname(e.Nickname)
	if err != nil {
		return err
	}
	e.Nickname = nickname
	member := nicknameMember(nickname)
	infoKey := keyInfo + setID
	rankKey := keyRank + setID

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	return b.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, infoKey, member).Result()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			var prev Entry
			if err := json.Unmarshal([]byte(raw), &prev); err == nil && !Dominates(e, prev) {
				return nil
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.ZAdd(ctx, rankKey, redis.Z{Score: rankScore(e), Member: member})
			pipe.HSet(ctx, infoKey, member, data)
			pipe.SAdd(ctx, keySets, setID)
			return nil
		})
		return err
	}, infoKey)
}

// Top returns the best limit entries of a set. Entries tied with the last
// ranked one are fetched too so submission time can break the tie.
func (b *RedisBoard) Top(ctx context.Context, setID string, limit int) ([]Entry, error) {
	infoKey := keyInfo + setID
	if limit <= 0 {
		all, err := b.client.HGetAll(ctx, infoKey).Result()
		if err != nil {
			return nil, err
		}
		entries := make([]Entry, 0, len(all))
		for _, raw := range all {
			if e, ok := decodeEntry(raw); ok {
				entries = append(entries, e)
			}
		}
		Sort(entries)
		return entries, nil
	}

	head, err := b.client.ZRevRangeWithScores(ctx, keyRank+setID, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(head) == 0 {
		return nil, nil
	}
	cutoff := strconv.FormatFloat(head[len(head)-1].Score, 'f', -1, 64)
	members, err := b.client.ZRangeByScore(ctx, keyRank+setID, &redis.ZRangeBy{Min: cutoff, Max: "+inf"}).Result()
	if err != nil {
		return nil, err
	}
	values, err := b.client.HMGet(ctx, infoKey, members...).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		if e, ok := decodeEntry(raw); ok {
			entries = append(entries, e)
		}
	}
	Sort(entries)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Sets returns the ids of sets with stored entries.
func (b *RedisBoard) Sets(ctx context.Context) ([]string, error) {
	ids, err := b.client.SMembers(ctx, keySets).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

// rankScore packs percentage and best streak into one sorted-set score.
func rankScore(e Entry) float64 {
	streak := min(max(e.BestStreak, 0), 999)
	return math.Floor(e.Percent()*1e9)*1e3 + float64(streak)
}

func nicknameMember(nickname string) string {
	return store.NicknameKey(nickname)
}

func decodeEntry(raw string) (Entry, bool) {
	var e Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return Entry{}, false
	}
	return e, true
}
