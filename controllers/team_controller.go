package controllers

import (
	"errors"
	"strings"
	"time"

	"manualctf/database"
	"manualctf/errs"
	"manualctf/models"
	"manualctf/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// isUserInTeam 检查用户是否已在队伍中
func isUserInTeam(tx *gorm.DB, userID uint32) (bool, error) {
	var count int64
	err := tx.Model(&models.TeamMember{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func CreateTeam(c *gin.Context) {
	userID := c.GetUint32("user_id")

	var req struct {
		TeamName     string `json:"team_name" binding:"required,max=100"`
		TeamDescribe string `json:"team_describe"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, errs.Wrapf(err, errs.InvalidParams, "invalid params: %v", err))
		return
	}
	req.TeamName = strings.TrimSpace(req.TeamName)

	newTeam := models.Team{
		TeamName:       req.TeamName,
		LeaderID:       userID,
		InvitationCode: utils.GenerateInvitationCode(12),
		TeamDescribe:   req.TeamDescribe,
		TeamStatus:     models.TeamStatusActive,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		inTeam, err := isUserInTeam(tx, userID)
		if err != nil {
			return errs.Wrap(err, errs.DatabaseError)
		}
		if inTeam {
			return errs.New(errs.AlreadyInTeam)
		}

		var count int64
		if err := tx.Model(&models.Team{}).Where("team_name = ?", req.TeamName).Count(&count).Error; err != nil {
			return errs.Wrap(err, errs.DatabaseError)
		}
		if count > 0 {
			return errs.Newf(errs.AccountExists, "team name already exists")
		}

		if err := tx.Create(&newTeam).Error; err != nil {
			return errs.Wrap(err, errs.DatabaseError)
		}
		leaderMember := models.TeamMember{
			TeamID:   newTeam.ID,
			UserID:   userID,
			Role:     models.TeamRoleLeader,
			JoinedAt: time.Now(),
		}
		if err := tx.Create(&leaderMember).Error; err != nil {
			return errs.Wrap(err, errs.DatabaseError)
		}
		return nil
	})
	if err != nil {
		utils.Fail(c, err)
		return
	}

	utils.Success(c, "Team created successfully", gin.H{
		"id":              newTeam.ID,
		"team_name":       newTeam.TeamName,
		"leader_id":       newTeam.LeaderID,
		"invitation_code": newTeam.InvitationCode,
	})
}

func JoinTeam(c *gin.Context) {
	userID := c.GetUint32("user_id")

	var req struct {
		InvitationCode string `json:"invitation_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, errs.Wrapf(err, errs.InvalidParams, "invalid params: %v", err))
		return
	}

	var targetTeam models.Team
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		inTeam, err := isUserInTeam(tx, userID)
		if err != nil {
			return errs.Wrap(err, errs.DatabaseError)
		}
		if inTeam {
			return errs.New(errs.AlreadyInTeam)
		}

		if err := tx.Where("invitation_code = ?", req.InvitationCode).First(&targetTeam).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.New(errs.InvalidInvite)
			}
			return errs.Wrap(err, errs.DatabaseError)
		}
		if !targetTeam.CanSubmit() {
			return errs.New(errs.AccountBanned)
		}

		newMember := models.TeamMember{
			TeamID:   targetTeam.ID,
			UserID:   userID,
			Role:     models.TeamRoleMember,
			JoinedAt: time.Now(),
		}
		if err := tx.Create(&newMember).Error; err != nil {
			return errs.Wrap(err, errs.DatabaseError)
		}
		return nil
	})
	if err != nil {
		utils.Fail(c, err)
		return
	}

	utils.Success(c, "Joined team successfully", gin.H{
		"team_id":   targetTeam.ID,
		"team_name": targetTeam.TeamName,
	})
}

func LeaveTeam(c *gin.Context) {
	userID := c.GetUint32("user_id")

	var member models.TeamMember
	if err := database.DB.Where("user_id = ?", userID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(c, errs.New(errs.NotInTeam))
			return
		}
		utils.Fail(c, errs.Wrap(err, errs.DatabaseError))
		return
	}

	if member.IsLeader() {
		utils.Fail(c, errs.New(errs.LeaderCannotGo))
		return
	}

	if err := database.DB.Delete(&member).Error; err != nil {
		utils.Fail(c, errs.Wrap(err, errs.DatabaseError))
		return
	}

	utils.Success(c, "Left team successfully", nil)
}
