package arena

import (
	"context"
	"errors"
	"strconv"

	"github.com/colearn-app/colearn-api/models"
	"github.com/colearn-app/colearn-api/utils"
	"github.com/redis/go-redis/v9"
)

const leaderboardKey = "arena:leaderboard"

// ErrLeaderboardUnavailable signals the caller to fall back to a SQL
// scan of arena profiles.
var ErrLeaderboardUnavailable = errors.New("leaderboard cache unavailable")

// Leaderboard caches arena ratings in a redis sorted set so the top-N
// query does not scan the profiles table on every request. The cache is
// write-through on profile updates and rebuilt periodically from SQL.
type Leaderboard struct {
	rdb *redis.Client
}

// NewLeaderboard wraps a redis client; a nil client yields a
// leaderboard that reports unavailable on every call.
func NewLeaderboard(rdb *redis.Client) *Leaderboard {
	return &Leaderboard{rdb: rdb}
}

func (l *Leaderboard) available() bool {
	return l != nil && l.rdb != nil
}

// Update writes one user's rating through to the cache. Cache failures
// are logged but never fail the battle that triggered them.
func (l *Leaderboard) Update(ctx context.Context, userID int, rating int) {
	if !l.available() {
		return
	}
	err := l.rdb.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  float64(rating),
		Member: strconv.Itoa(userID),
	}).Err()
	if err != nil {
		utils.LogError("Leaderboard update for user %d failed: %v", userID, err)
	}
}

// Top returns the highest-rated user IDs with their ratings.
func (l *Leaderboard) Top(ctx context.Context, n int) ([]models.ArenaRank, error) {
	if !l.available() {
		return nil, ErrLeaderboardUnavailable
	}
	entries, err := l.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	ranks := make([]models.ArenaRank, 0, len(entries))
	for _, e := range entries {
		id, err := strconv.Atoi(e.Member.(string))
		if err != nil {
			continue
		}
		ranks = append(ranks, models.ArenaRank{UserID: id, ArenaRating: int(e.Score)})
	}
	return ranks, nil
}

// Rebuild replaces the cached set with the full profile table.
func (l *Leaderboard) Rebuild(ctx context.Context, profiles []models.ArenaProfile) error {
	if !l.available() {
		return ErrLeaderboardUnavailable
	}
	members := make([]redis.Z, 0, len(profiles))
	for _, p := range profiles {
		members = append(members, redis.Z{
			Score:  float64(p.ArenaRating),
			Member: strconv.Itoa(p.UserID),
		})
	}

	pipe := l.rdb.TxPipeline()
	pipe.Del(ctx, leaderboardKey)
	if len(members) > 0 {
		pipe.ZAdd(ctx, leaderboardKey, members...)
	}
	_, err := pipe.Exec(ctx)
	return err
}
