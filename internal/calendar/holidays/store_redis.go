package holidays

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis key holding the holiday set as YYYY-MM-DD members.
const holidaySetKey = "calendar:holidays"

// Redis answers holiday membership from a shared Redis set so all instances
// observe the same calendar. Lookups fail open: when Redis is unreachable
// the date counts as a working day, matching the documented "no calendar,
// weekends only" fallback for working-day deadlines.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedis constructs a Redis-backed holiday calendar.
func NewRedis(client *redis.Client, logger *slog.Logger) *Redis {
	return &Redis{client: client, logger: logger}
}

func (r *Redis) IsHoliday(ctx context.Context, day time.Time) (bool, error) {
	ok, err := r.client.SIsMember(ctx, holidaySetKey, day.Format(dayFormat)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		if r.logger != nil {
			r.logger.WarnContext(ctx, "holiday lookup failed, treating as working day",
				"date", day.Format(dayFormat),
				"error", err.Error(),
			)
		}
		return false, nil
	}
	return ok, nil
}

// Load replaces the holiday set with the given dates.
func (r *Redis) Load(ctx context.Context, days []time.Time) error {
	members := make([]any, 0, len(days))
	for _, d := range days {
		members = append(members, d.Format(dayFormat))
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, holidaySetKey)
	if len(members) > 0 {
		pipe.SAdd(ctx, holidaySetKey, members...)
	}
	_, err := pipe.Exec(ctx)
	return err
}
