package services

import (
	"context"
	"fmt"

	"manualctf/config"
	"manualctf/database"
	"manualctf/errs"
)

func attemptKey(userID uint32) string {
	return fmt.Sprintf("ratelimit:attempt:%d", userID)
}

// AllowAttempt 固定窗口限流：窗口内首次提交用 SetNX 建键并带过期时间，
// 之后 INCR 计数；发现键没有过期时间时补设，避免计数永不清零
func AllowAttempt(ctx context.Context, userID uint32) (bool, error) {
	cfg := config.GetConfig().RateLimit
	if database.RDB == nil || cfg.Attempts <= 0 {
		return true, nil
	}
	key := attemptKey(userID)

	acquired, err := database.RDB.SetNX(ctx, key, 1, cfg.Window).Result()
	if err != nil {
		return false, errs.Wrap(err, errs.InternalError)
	}
	count := int64(1)
	if !acquired {
		count, err = database.RDB.Incr(ctx, key).Result()
		if err != nil {
			return false, errs.Wrap(err, errs.InternalError)
		}
		ttl, ttlErr := database.RDB.TTL(ctx, key).Result()
		if ttlErr == nil && ttl <= 0 {
			_ = database.RDB.Expire(ctx, key, cfg.Window).Err()
		}
	}
	return count <= int64(cfg.Attempts), nil
}
