package models

import (
	"time"
)

// TeamStatus 决定队伍能否提交以及是否出现在排行榜
type TeamStatus string

const (
	TeamStatusActive TeamStatus = "active"
	TeamStatusBanned TeamStatus = "banned"
	TeamStatusHidden TeamStatus = "hidden"
)

func (s TeamStatus) Valid() bool {
	switch s {
	case TeamStatusActive, TeamStatusBanned, TeamStatusHidden:
		return true
	}
	return false
}

// Team 队伍模式下解题与提交归属于队伍
type Team struct {
	ID             uint32       `gorm:"primarykey" json:"id"`
	TeamName       string       `gorm:"size:100;unique;not null" json:"team_name"`
	LeaderID       uint32       `gorm:"not null" json:"leader_id"`
	InvitationCode string       `gorm:"size:20;unique;not null" json:"invitation_code"`
	TeamDescribe   string       `gorm:"type:text" json:"team_describe"`
	TeamStatus     TeamStatus   `gorm:"size:16;default:'active'" json:"team_status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	Members        []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

func (Team) TableName() string {
	return "dalictf_team"
}

// CanSubmit 被封禁的队伍不能加入新成员，也不能提交
func (t *Team) CanSubmit() bool {
	return t.TeamStatus != TeamStatusBanned
}
