package controllers

import (
	"strconv"

	"manualctf/errs"
	"manualctf/models"
	"manualctf/services"
	"manualctf/utils"

	"github.com/gin-gonic/gin"
)

func queryUint32(c *gin.Context, key string) (uint32, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, errs.Newf(errs.InvalidParams, "%s must be a positive integer", key)
	}
	return uint32(v), nil
}

// GetSubmissionLogs 管理员查看提交记录，支持按类型、题目、用户、队伍筛选
func GetSubmissionLogs(c *gin.Context) {
	filter := services.SubmissionFilter{Type: models.SubmissionType(c.Query("type"))}
	var err error
	if filter.ChallengeID, err = queryUint32(c, "challenge_id"); err != nil {
		utils.Fail(c, err)
		return
	}
	if filter.UserID, err = queryUint32(c, "user_id"); err != nil {
		utils.Fail(c, err)
		return
	}
	if filter.TeamID, err = queryUint32(c, "team_id"); err != nil {
		utils.Fail(c, err)
		return
	}

	results, err := services.ListSubmissions(filter)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "success", gin.H{
		"total":       len(results),
		"submissions": results,
	})
}
