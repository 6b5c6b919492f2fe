package models

import (
	"time"
)

// Standing 排行榜中的一行，按 Score 降序、LastSolveTime 升序排名
type Standing struct {
	Rank          uint      `json:"rank"`
	AccountID     uint32    `json:"account_id"`
	Name          string    `json:"name"`
	Score         int       `json:"score"`
	LastSolveTime time.Time `json:"last_solve_time"`
}

// MigrateModels 由 migrate 命令与测试统一建表
var MigrateModels = []interface{}{
	&User{},
	&Team{},
	&TeamMember{},
	&Challenge{},
	&Submission{},
	&Solve{},
}
