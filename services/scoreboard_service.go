package services

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"manualctf/config"
	"manualctf/database"
	"manualctf/errs"
	"manualctf/logger"
	"manualctf/models"

	"go.uber.org/zap"
)

const (
	scoreboardKeyPrefix = "scoreboard:"
	scoreboardTTL       = 15 * time.Second
)

type solveRow struct {
	AccountID uint32
	Name      string
	Value     int
	Date      time.Time
}

// Standings 返回排行榜，优先读取 Redis 缓存，缓存 15 秒以保证准实时
func Standings(ctx context.Context, mode config.Mode) ([]models.Standing, error) {
	cacheKey := scoreboardKey(mode)
	if database.RDB != nil {
		if val, err := database.RDB.Get(ctx, cacheKey).Result(); err == nil {
			var cached []models.Standing
			if json.Unmarshal([]byte(val), &cached) == nil {
				return cached, nil
			}
		}
	}

	standings, err := computeStandings(mode)
	if err != nil {
		return nil, err
	}

	if database.RDB != nil {
		if data, err := json.Marshal(standings); err == nil {
			if err := database.RDB.Set(ctx, cacheKey, data, scoreboardTTL).Err(); err != nil {
				logger.Warn(ctx, "failed to cache scoreboard", zap.Error(err))
			}
		}
	}
	return standings, nil
}

func computeStandings(mode config.Mode) ([]models.Standing, error) {
	q := database.DB.Table("dalictf_solve so").
		Joins("JOIN dalictf_submission s ON s.id = so.id").
		Joins("JOIN dalictf_challenge c ON c.id = so.challenge_id").
		Where("c.state = ?", models.ChallengeStateVisible)
	if mode == config.ModeTeams {
		q = q.Select("so.team_id AS account_id, t.team_name AS name, c.value AS value, s.date AS date").
			Joins("JOIN dalictf_team t ON t.id = so.team_id").
			Where("t.team_status = ?", models.TeamStatusActive)
	} else {
		q = q.Select("so.user_id AS account_id, u.username AS name, c.value AS value, s.date AS date").
			Joins("JOIN dalictf_user u ON u.id = so.user_id").
			Where("u.status = ?", models.StatusActive)
	}

	var rows []solveRow
	if err := q.Order("so.id ASC").Scan(&rows).Error; err != nil {
		return nil, errs.Wrap(err, errs.DatabaseError)
	}

	byAccount := make(map[uint32]*models.Standing)
	for _, r := range rows {
		st, ok := byAccount[r.AccountID]
		if !ok {
			st = &models.Standing{AccountID: r.AccountID, Name: r.Name}
			byAccount[r.AccountID] = st
		}
		st.Score += r.Value
		if r.Date.After(st.LastSolveTime) {
			st.LastSolveTime = r.Date
		}
	}

	standings := make([]models.Standing, 0, len(byAccount))
	for _, st := range byAccount {
		standings = append(standings, *st)
	}
	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.LastSolveTime.Equal(b.LastSolveTime) {
			return a.LastSolveTime.Before(b.LastSolveTime)
		}
		return a.AccountID < b.AccountID
	})
	for i := range standings {
		standings[i].Rank = uint(i + 1)
	}
	return standings, nil
}

func scoreboardKey(mode config.Mode) string {
	return scoreboardKeyPrefix + string(mode)
}

// InvalidateScoreboard 新的解题记录写入后清除两种模式的排行榜缓存
func InvalidateScoreboard(ctx context.Context) {
	if database.RDB == nil {
		return
	}
	keys := []string{scoreboardKey(config.ModeTeams), scoreboardKey(config.ModeUsers)}
	if err := database.RDB.Del(ctx, keys...).Err(); err != nil {
		logger.Warn(ctx, "failed to clear scoreboard cache", zap.Error(err))
		return
	}
	logger.Debug(ctx, "cleared scoreboard cache")
}
