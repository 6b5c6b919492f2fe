package models

// Solve 对应一条 correct 提交，ID 与提交记录 ID 相同
type Solve struct {
	ID          uint64  `gorm:"primarykey;autoIncrement:false"`
	ChallengeID uint32  `gorm:"not null;uniqueIndex:uniq_solve_user;uniqueIndex:uniq_solve_team"`
	UserID      uint32  `gorm:"not null;uniqueIndex:uniq_solve_user"`
	TeamID      *uint32 `gorm:"uniqueIndex:uniq_solve_team"`
}

func (Solve) TableName() string {
	return "dalictf_solve"
}
