package manual

import (
	"manualctf/models"
)

// SubmissionTypePending 等待人工评审的提交
const SubmissionTypePending models.SubmissionType = "pending"

// ManualChallenge 人工评审题型的扩展表，Initial 为创建时的原始分值
type ManualChallenge struct {
	ChallengeID uint32 `gorm:"primarykey;autoIncrement:false"`
	Initial     int    `gorm:"not null;default:0"`
}

func (ManualChallenge) TableName() string {
	return "dalictf_manual_challenge"
}
