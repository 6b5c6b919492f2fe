package models

import (
	"time"
)

type ChallengeState string

const (
	ChallengeStateVisible ChallengeState = "visible"
	ChallengeStateHidden  ChallengeState = "hidden"
)

// Challenge 题目基表，Type 为题型鉴别列，对应已注册的题型 ID
type Challenge struct {
	ID          uint32         `gorm:"primarykey"`
	Name        string         `gorm:"size:80;not null"`
	Description string         `gorm:"type:text"`
	Category    string         `gorm:"size:80"`
	Value       int            `gorm:"not null;default:0"`
	MaxAttempts int            `gorm:"not null;default:0"`
	State       ChallengeState `gorm:"size:16;not null;default:'visible'"`
	Type        string         `gorm:"size:80;not null;default:'standard';index"`
	StaticFlag  string         `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Challenge) TableName() string {
	return "dalictf_challenge"
}

// ChallengeColumns 允许通过通用更新接口直接赋值的基表字段
var ChallengeColumns = map[string]struct{}{
	"name":         {},
	"description":  {},
	"category":     {},
	"value":        {},
	"max_attempts": {},
	"state":        {},
	"type":         {},
	"static_flag":  {},
}
