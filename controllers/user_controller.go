package controllers

import (
	"errors"
	"net/http"
	"strings"

	"manualctf/config"
	"manualctf/database"
	"manualctf/errs"
	"manualctf/logger"
	"manualctf/middlewares"
	"manualctf/models"
	"manualctf/services"
	"manualctf/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// --- 公开接口 ---

func Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,max=50"`
		Password string `json:"password" binding:"required,min=8"`
		Email    string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, errs.Wrapf(err, errs.InvalidParams, "invalid params: %v", err))
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	var count int64
	if err := database.DB.Model(&models.User{}).
		Where("username = ? OR email = ?", req.Username, req.Email).
		Count(&count).Error; err != nil {
		utils.Fail(c, errs.Wrap(err, errs.DatabaseError))
		return
	}
	if count > 0 {
		utils.Fail(c, errs.Newf(errs.AccountExists, "username or email already registered"))
		return
	}

	newUser := models.User{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Role:     models.RoleUser,
		Status:   models.StatusActive,
	}
	if err := database.DB.Create(&newUser).Error; err != nil {
		utils.Fail(c, errs.Wrap(err, errs.DatabaseError))
		return
	}

	logger.Info(c.Request.Context(), "user registered", zap.Uint32("user_id", newUser.ID))
	utils.Success(c, "User registered successfully", gin.H{
		"id":       newUser.ID,
		"username": newUser.Username,
		"role":     newUser.Role,
	})
}

func Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, errs.Wrapf(err, errs.InvalidParams, "invalid params: %v", err))
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(c, errs.New(errs.InvalidCredentials))
			return
		}
		utils.Fail(c, errs.Wrap(err, errs.DatabaseError))
		return
	}
	if !user.CheckPassword(req.Password) {
		utils.Fail(c, errs.New(errs.InvalidCredentials))
		return
	}
	if user.Banned() {
		utils.Fail(c, errs.New(errs.AccountBanned))
		return
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		utils.Fail(c, errs.Wrap(err, errs.InternalError))
		return
	}

	// 浏览器访问评审页时依赖 Cookie 携带 Token；批准/驳回是 GET，跨站链接不得带上该 Cookie
	maxAge := int(config.GetConfig().JWT.TTL.Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middlewares.TokenCookie, token, maxAge, "/", "", false, true)

	utils.Success(c, "Login success", gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// --- 需要登录的接口 ---

func GetMe(c *gin.Context) {
	user, err := services.CurrentUser(c)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	team, err := services.TeamOf(database.DB, user.ID)
	if err != nil {
		utils.Fail(c, err)
		return
	}

	var teamInfo gin.H
	if team != nil {
		teamInfo = gin.H{
			"id":        team.ID,
			"team_name": team.TeamName,
			"leader_id": team.LeaderID,
		}
	}
	utils.Success(c, "success", gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
		"status":   user.Status,
		"team":     teamInfo,
	})
}

// CreateAdmin 命令行初始化管理员账号
func CreateAdmin(username, email, password string) (*models.User, error) {
	if username == "" || email == "" || len(password) < models.MinPasswordLength {
		return nil, errs.Newf(errs.InvalidParams, "username, email and a password of at least 8 characters are required")
	}
	user := models.User{
		Username: username,
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin,
		Status:   models.StatusActive,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		return nil, errs.Wrap(err, errs.DatabaseError)
	}
	return &user, nil
}
