package services

import (
	"errors"

	"manualctf/challenges"
	"manualctf/config"
	"manualctf/database"
	"manualctf/errs"
	"manualctf/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CurrentUser 读取中间件写入的 user_id 并加载用户
func CurrentUser(c *gin.Context) (*models.User, error) {
	userIDAny, exists := c.Get("user_id")
	if !exists {
		return nil, errs.New(errs.Unauthorized)
	}
	userID, ok := userIDAny.(uint32)
	if !ok {
		return nil, errs.New(errs.Unauthorized)
	}
	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.Unauthorized)
		}
		return nil, errs.Wrap(err, errs.DatabaseError)
	}
	if user.Banned() {
		return nil, errs.New(errs.AccountBanned)
	}
	return &user, nil
}

// TeamOf 返回用户所在队伍，未加入队伍时返回 nil
func TeamOf(db *gorm.DB, userID uint32) (*models.Team, error) {
	var member models.TeamMember
	if err := db.Where("user_id = ?", userID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errs.Wrap(err, errs.DatabaseError)
	}
	var team models.Team
	if err := db.First(&team, member.TeamID).Error; err != nil {
		return nil, errs.Wrap(err, errs.DatabaseError)
	}
	return &team, nil
}

// CurrentAccount 解析当前请求的提交身份；队伍模式下必须已加入队伍
func CurrentAccount(c *gin.Context) (challenges.Account, error) {
	user, err := CurrentUser(c)
	if err != nil {
		return challenges.Account{}, err
	}
	acct := challenges.Account{User: user, IP: c.ClientIP()}
	if config.GetConfig().Mode != config.ModeTeams {
		return acct, nil
	}
	team, err := TeamOf(database.DB, user.ID)
	if err != nil {
		return challenges.Account{}, err
	}
	if team == nil {
		return challenges.Account{}, errs.New(errs.TeamRequired)
	}
	if !team.CanSubmit() {
		return challenges.Account{}, errs.New(errs.AccountBanned)
	}
	acct.Team = team
	return acct, nil
}

// ScopeToAccount 按当前模式把查询限定到该账号（队伍或个人）的记录
func ScopeToAccount(db *gorm.DB, acct challenges.Account, column string) *gorm.DB {
	if acct.Team != nil {
		return db.Where(column+"team_id = ?", acct.Team.ID)
	}
	return db.Where(column+"user_id = ?", acct.User.ID)
}
