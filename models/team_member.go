package models

import "time"

type TeamMemberRole string

const (
	TeamRoleLeader TeamMemberRole = "leader"
	TeamRoleMember TeamMemberRole = "member"
)

// TeamMember 一个用户同一时间只能属于一个队伍（user_id 唯一）
type TeamMember struct {
	ID       uint32         `gorm:"primarykey"`
	TeamID   uint32         `gorm:"index;not null"`
	UserID   uint32         `gorm:"uniqueIndex;not null"`
	User     User           `gorm:"foreignKey:UserID"`
	Role     TeamMemberRole `gorm:"size:16;default:'member'"`
	JoinedAt time.Time
}

func (TeamMember) TableName() string {
	return "dalictf_team_members"
}

// IsLeader 队长不能离队，只能由管理员删除整个队伍
func (m *TeamMember) IsLeader() bool {
	return m.Role == TeamRoleLeader
}
