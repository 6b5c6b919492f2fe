package services

import (
	"manualctf/database"
	"manualctf/dto"
	"manualctf/errs"
	"manualctf/models"
)

// SubmissionFilter 提交记录查询条件，零值表示不过滤
type SubmissionFilter struct {
	Type        models.SubmissionType
	ChallengeID uint32
	UserID      uint32
	TeamID      uint32
}

// ListSubmissions 关联题目、用户与队伍名称，按提交时间倒序返回
func ListSubmissions(f SubmissionFilter) ([]dto.SubmissionLogResp, error) {
	q := database.DB.Table("dalictf_submission s").
		Select(`s.id, s.challenge_id, c.name AS challenge_name, s.user_id, u.username,
			s.team_id, t.team_name, s.ip, s.provided, s.type, s.date`).
		Joins("JOIN dalictf_challenge c ON c.id = s.challenge_id").
		Joins("LEFT JOIN dalictf_user u ON u.id = s.user_id").
		Joins("LEFT JOIN dalictf_team t ON t.id = s.team_id")

	if f.Type != "" {
		q = q.Where("s.type = ?", f.Type)
	}
	if f.ChallengeID != 0 {
		q = q.Where("s.challenge_id = ?", f.ChallengeID)
	}
	if f.UserID != 0 {
		q = q.Where("s.user_id = ?", f.UserID)
	}
	if f.TeamID != 0 {
		q = q.Where("s.team_id = ?", f.TeamID)
	}

	items := make([]dto.SubmissionLogResp, 0)
	if err := q.Order("s.date DESC, s.id DESC").Scan(&items).Error; err != nil {
		return nil, errs.Wrap(err, errs.DatabaseError)
	}
	return items, nil
}
