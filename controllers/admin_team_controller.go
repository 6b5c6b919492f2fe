package controllers

import (
	"errors"
	"strconv"

	"manualctf/database"
	"manualctf/errs"
	"manualctf/logger"
	"manualctf/models"
	"manualctf/services"
	"manualctf/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type adminTeamInfo struct {
	ID             uint32            `json:"id"`
	TeamName       string            `json:"team_name"`
	LeaderUsername string            `json:"leader_username"`
	TeamStatus     models.TeamStatus `json:"team_status"`
	MemberCount    int64             `json:"member_count"`
}

func AdminGetTeams(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	search := c.Query("search")

	query := func() *gorm.DB {
		db := database.DB.Model(&models.Team{})
		if search != "" {
			db = db.Where("team_name LIKE ?", "%"+search+"%")
		}
		return db
	}
	var total int64
	if err := query().Count(&total).Error; err != nil {
		utils.Fail(c, errs.Wrap(err, errs.DatabaseError))
		return
	}

	teams := make([]adminTeamInfo, 0)
	err := query().Select(`dalictf_team.id, dalictf_team.team_name, u.username AS leader_username,
			dalictf_team.team_status,
			(SELECT COUNT(*) FROM dalictf_team_members m WHERE m.team_id = dalictf_team.id) AS member_count`).
		Joins("LEFT JOIN dalictf_user u ON u.id = dalictf_team.leader_id").
		Order("dalictf_team.id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Scan(&teams).Error
	if err != nil {
		utils.Fail(c, errs.Wrap(err, errs.DatabaseError))
		return
	}

	utils.Success(c, "success", gin.H{
		"total": total,
		"teams": teams,
	})
}

// AdminUpdateTeamStatus 封禁或隐藏的队伍不再出现在排行榜中
func AdminUpdateTeamStatus(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Fail(c, errs.New(errs.InvalidID))
		return
	}

	var req struct {
		Status models.TeamStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !req.Status.Valid() {
		utils.Fail(c, errs.Newf(errs.InvalidParams, "invalid status"))
		return
	}

	var team models.Team
	if err := database.DB.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(c, errs.Newf(errs.NotFound, "team not found"))
			return
		}
		utils.Fail(c, errs.Wrap(err, errs.DatabaseError))
		return
	}
	if err := database.DB.Model(&team).Update("team_status", req.Status).Error; err != nil {
		utils.Fail(c, errs.Wrap(err, errs.DatabaseError))
		return
	}

	ctx := c.Request.Context()
	services.InvalidateScoreboard(ctx)
	logger.Info(ctx, "team status updated",
		zap.Uint32("team_id", team.ID),
		zap.String("status", string(req.Status)),
	)
	utils.Success(c, "Team status updated successfully", gin.H{
		"team_id": team.ID,
		"status":  req.Status,
	})
}

// AdminDeleteTeam 硬删除队伍及成员关系，提交记录保留
func AdminDeleteTeam(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Fail(c, errs.New(errs.InvalidID))
		return
	}

	var deleted int64
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamMember{}).Error; err != nil {
			return errs.Wrap(err, errs.DatabaseError)
		}
		res := tx.Delete(&models.Team{}, teamID)
		if res.Error != nil {
			return errs.Wrap(res.Error, errs.DatabaseError)
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		utils.Fail(c, err)
		return
	}
	if deleted == 0 {
		utils.Fail(c, errs.Newf(errs.NotFound, "team not found"))
		return
	}

	services.InvalidateScoreboard(c.Request.Context())
	utils.Success(c, "Team deleted successfully by admin", nil)
}
