package controllers

import (
	"strconv"

	"manualctf/config"
	"manualctf/services"
	"manualctf/utils"

	"github.com/gin-gonic/gin"
)

// GetScoreboard 查询排行榜，limit 为 0 时返回全部
func GetScoreboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if limit < 0 || limit > 1000 {
		limit = 0
	}

	mode := config.GetConfig().Mode
	standings, err := services.Standings(c.Request.Context(), mode)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	if limit > 0 && len(standings) > limit {
		standings = standings[:limit]
	}

	utils.Success(c, "success", gin.H{
		"mode":      mode,
		"standings": standings,
	})
}
