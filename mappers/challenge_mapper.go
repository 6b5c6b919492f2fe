package mappers

import (
	"manualctf/dto"
	"manualctf/models"
)

func MapModelToItemResp(ch models.Challenge, solves int64, solved bool) dto.ChallengeItemResp {
	return dto.ChallengeItemResp{
		ID:       ch.ID,
		Name:     ch.Name,
		Category: ch.Category,
		Value:    ch.Value,
		Type:     ch.Type,
		Solves:   solves,
		Solved:   solved,
	}
}

// MapAttemptResult 将题型返回的判定结果转换为响应
func MapAttemptResult(ok bool, message string) dto.AttemptResp {
	status := "incorrect"
	if ok {
		status = "correct"
	}
	return dto.AttemptResp{Status: status, Message: message}
}
