package stats

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
)

const (
	fieldTotalHands        = "totalHands"
	fieldVPIPHands         = "vpipHands"
	fieldPFRHands          = "pfrHands"
	fieldPostflopBets      = "postflopBets"
	fieldPostflopRaises    = "postflopRaises"
	fieldPostflopCalls     = "postflopCalls"
	fieldThreeBetChances   = "threeBetChances"
	fieldThreeBetsMade     = "threeBetsMade"
	fieldFoldToCBetChances = "foldToCBetChances"
	fieldFoldToCBetsMade   = "foldToCBetsMade"
)

// RedisCounterCache keeps one counter hash per player. Increment-only
// updates commute, so multiple table pipelines can apply hands for the
// same player without coordination.
type RedisCounterCache struct {
	rdclient *redis.Client
}

func NewRedisCounterCache(redisURL string, redisPW string, redisDB int) *RedisCounterCache {
	rdclient := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: redisPW,
		DB:       redisDB,
	})
	return &RedisCounterCache{
		rdclient: rdclient,
	}
}

func counterKey(playerName string) string {
	return fmt.Sprintf("counters|%s", playerName)
}

// Apply merges one hand's deltas into the player's counter hash.
func (r *RedisCounterCache) Apply(ctx context.Context, playerName string, delta Counters) error {
	key := counterKey(playerName)
	pipe := r.rdclient.Pipeline()
	incr := func(field string, by int64) {
		if by != 0 {
			pipe.HIncrBy(ctx, key, field, by)
		}
	}
	incr(fieldTotalHands, delta.TotalHands)
	incr(fieldVPIPHands, delta.VPIPHands)
	incr(fieldPFRHands, delta.PFRHands)
	incr(fieldPostflopBets, delta.PostflopBets)
	incr(fieldPostflopRaises, delta.PostflopRaises)
	incr(fieldPostflopCalls, delta.PostflopCalls)
	incr(fieldThreeBetChances, delta.ThreeBetChances)
	incr(fieldThreeBetsMade, delta.ThreeBetsMade)
	incr(fieldFoldToCBetChances, delta.FoldToCBetChances)
	incr(fieldFoldToCBetsMade, delta.FoldToCBetsMade)
	_, err := pipe.Exec(ctx)
	return err
}

// Get loads the player's counters. A player never seen before reads as
// all zeros, not an error.
func (r *RedisCounterCache) Get(ctx context.Context, playerName string) (Counters, error) {
	fields, err := r.rdclient.HGetAll(ctx, counterKey(playerName)).Result()
	if err != nil {
		return Counters{}, err
	}

	get := func(field string) int64 {
		v, err := strconv.ParseInt(fields[field], 10, 64)
		if err != nil {
			return 0
		}
		return v
	}
	return Counters{
		TotalHands:        get(fieldTotalHands),
		VPIPHands:         get(fieldVPIPHands),
		PFRHands:          get(fieldPFRHands),
		PostflopBets:      get(fieldPostflopBets),
		PostflopRaises:    get(fieldPostflopRaises),
		PostflopCalls:     get(fieldPostflopCalls),
		ThreeBetChances:   get(fieldThreeBetChances),
		ThreeBetsMade:     get(fieldThreeBetsMade),
		FoldToCBetChances: get(fieldFoldToCBetChances),
		FoldToCBetsMade:   get(fieldFoldToCBetsMade),
	}, nil
}

// Replace overwrites the player's counters. Used by rebuilds from the
// hand history.
func (r *RedisCounterCache) Replace(ctx context.Context, playerName string, counters Counters) error {
	key := counterKey(playerName)
	pipe := r.rdclient.Pipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key,
		fieldTotalHands, counters.TotalHands,
		fieldVPIPHands, counters.VPIPHands,
		fieldPFRHands, counters.PFRHands,
		fieldPostflopBets, counters.PostflopBets,
		fieldPostflopRaises, counters.PostflopRaises,
		fieldPostflopCalls, counters.PostflopCalls,
		fieldThreeBetChances, counters.ThreeBetChances,
		fieldThreeBetsMade, counters.ThreeBetsMade,
		fieldFoldToCBetChances, counters.FoldToCBetChances,
		fieldFoldToCBetsMade, counters.FoldToCBetsMade)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisCounterCache) Remove(ctx context.Context, playerName string) error {
	return r.rdclient.Del(ctx, counterKey(playerName)).Err()
}
