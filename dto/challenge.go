package dto

import (
	"strings"
	"time"
)

// ========== 请求 DTO ==========

type CreateChallengeReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Value       int    `json:"value"`
	MaxAttempts int    `json:"max_attempts"`
	State       string `json:"state"` // visible / hidden
	Type        string `json:"type"`
	Flag        string `json:"flag"` // 仅 standard 题型使用

	// 兼容旧客户端的 camelCase 字段
	MaxAttemptsCamel int    `json:"maxAttempts"`
	FlagCamel        string `json:"staticFlag"`
}

// Normalize: 将 camelCase 别名归一化，并做轻量默认值处理
func (r *CreateChallengeReq) Normalize() {
	if r.MaxAttempts == 0 && r.MaxAttemptsCamel != 0 {
		r.MaxAttempts = r.MaxAttemptsCamel
	}
	if r.Flag == "" && r.FlagCamel != "" {
		r.Flag = r.FlagCamel
	}

	r.Name = strings.TrimSpace(r.Name)
	r.Category = strings.TrimSpace(r.Category)
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	r.State = strings.ToLower(strings.TrimSpace(r.State))
	r.Flag = strings.TrimSpace(r.Flag)

	if r.Type == "" {
		r.Type = "standard"
	}
	if r.State == "" {
		r.State = "visible"
	}
}

// AttemptReq Submission 为 nil 表示请求体中缺少 submission 字段
type AttemptReq struct {
	ChallengeID uint32  `json:"challenge_id" binding:"required"`
	Submission  *string `json:"submission"`
}

// ========== 响应 DTO ==========

type ChallengeItemResp struct {
	ID       uint32 `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Value    int    `json:"value"`
	Type     string `json:"type"`
	Solves   int64  `json:"solves"`
	Solved   bool   `json:"solved_by_me"`
}

type TypeData struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Templates map[string]string `json:"templates"`
	Scripts   map[string]string `json:"scripts"`
}

// ChallengeView read() 的视图模型，Initial 仅对保留原始分值的题型输出
type ChallengeView struct {
	ID          uint32   `json:"id"`
	Name        string   `json:"name"`
	Value       int      `json:"value"`
	Initial     *int     `json:"initial,omitempty"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	State       string   `json:"state"`
	MaxAttempts int      `json:"max_attempts"`
	Type        string   `json:"type"`
	TypeData    TypeData `json:"type_data"`
}

type AttemptResp struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SubmissionEntry struct {
	Date     time.Time `json:"date"`
	Provided string    `json:"provided"`
}

// ====== Admin 专用响应 DTO ======

type SubmissionLogResp struct {
	ID            uint64    `json:"id"`
	ChallengeID   uint32    `json:"challenge_id"`
	ChallengeName string    `json:"challenge_name"`
	UserID        uint32    `json:"user_id"`
	Username      string    `json:"username"`
	TeamID        *uint32   `json:"team_id"`
	TeamName      *string   `json:"team_name"`
	IP            string    `json:"ip"`
	Provided      string    `json:"provided"`
	Type          string    `json:"type"`
	Date          time.Time `json:"date"`
}
