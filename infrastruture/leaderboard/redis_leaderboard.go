// Package leaderboard ranks players in Redis sorted sets.
package leaderboard

import (
	"context"
	"errors"
	"fmt"

	dmn "github.com/beka-birhanu/vinom-haunt/domain"
	"github.com/beka-birhanu/vinom-haunt/service/i"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "haunt:leaderboard"
	winsSuffix    = ":wins"
	bestSuffix    = ":best"
)

var (
	ErrNilClient = errors.New("redis client is nil")
)

// RedisLeaderboard keeps two sorted sets per prefix: wins and best score.
type RedisLeaderboard struct {
	client *redis.Client
	prefix string
}

// NewRedisLeaderboard returns a leaderboard stored under prefix; an empty prefix uses the default.
func NewRedisLeaderboard(client *redis.Client, prefix string) (i.Leaderboard, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisLeaderboard{client: client, prefix: prefix}, nil
}

// RecordResult implements i.Leaderboard.
func (l *RedisLeaderboard) RecordResult(ctx context.Context, playerID string, won bool, score int) error {
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if won {
			pipe.ZIncrBy(ctx, l.winsKey(), 1, playerID)
		} else {
			pipe.ZAddNX(ctx, l.winsKey(), redis.Z{Score: 0, Member: playerID})
		}
		pipe.ZAddGT(ctx, l.bestKey(), redis.Z{Score: float64(score), Member: playerID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("recording result of %s: %w", playerID, err)
	}
	return nil
}

// Top implements i.Leaderboard.
func (l *RedisLeaderboard) Top(ctx context.Context, n int64) ([]dmn.LeaderboardEntry, error) {
	if n <= 0 {
		return []dmn.LeaderboardEntry{}, nil
	}

	wins, err := l.client.ZRevRangeWithScores(ctx, l.winsKey(), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading wins: %w", err)
	}
	if len(wins) == 0 {
		return []dmn.LeaderboardEntry{}, nil
	}

	ids := make([]string, 0, len(wins))
	for _, z := range wins {
		ids = append(ids, fmt.Sprint(z.Member))
	}
	best, err := l.client.ZMScore(ctx, l.bestKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("reading best scores: %w", err)
	}

	entries := make([]dmn.LeaderboardEntry, 0, len(wins))
	for idx, z := range wins {
		e := dmn.LeaderboardEntry{PlayerID: ids[idx], Wins: int(z.Score)}
		if idx < len(best) {
			e.BestScore = int(best[idx])
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (l *RedisLeaderboard) winsKey() string {
	return l.prefix + winsSuffix
}

func (l *RedisLeaderboard) bestKey() string {
	return l.prefix + bestSuffix
}
