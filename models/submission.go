package models

import (
	"gorm.io/gorm"
	"time"
)

// SubmissionType 提交记录的鉴别列，插件可以扩展新的取值
type SubmissionType string

const (
	SubmissionCorrect   SubmissionType = "correct"
	SubmissionIncorrect SubmissionType = "incorrect"
)

type Submission struct {
	ID          uint64         `gorm:"primarykey"`
	ChallengeID uint32         `gorm:"not null;index"`
	UserID      uint32         `gorm:"not null;index"`
	TeamID      *uint32        `gorm:"index"`
	IP          string         `gorm:"size:46"`
	Provided    string         `gorm:"type:text"`
	Type        SubmissionType `gorm:"size:32;not null;index"`
	Date        time.Time      `gorm:"index"`
}

func (Submission) TableName() string {
	return "dalictf_submission"
}

// BeforeCreate 未显式指定时间时使用当前时间
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.Date.IsZero() {
		s.Date = time.Now()
	}
	return nil
}
