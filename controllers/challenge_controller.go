package controllers

import (
	"errors"
	"strconv"

	"manualctf/challenges"
	"manualctf/database"
	"manualctf/dto"
	"manualctf/errs"
	"manualctf/logger"
	"manualctf/mappers"
	"manualctf/metrics"
	"manualctf/middlewares"
	"manualctf/models"
	"manualctf/services"
	"manualctf/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ChallengeController 题目接口，按题目的 type 分发到已注册的题型
type ChallengeController struct {
	Registry *challenges.Registry
}

func NewChallengeController(reg *challenges.Registry) *ChallengeController {
	return &ChallengeController{Registry: reg}
}

func parseChallengeID(c *gin.Context) (uint32, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, errs.New(errs.InvalidID)
	}
	return uint32(id), nil
}

// loadChallenge 非管理员访问隐藏题目时同样返回不存在
func loadChallenge(c *gin.Context, id uint32) (*models.Challenge, error) {
	var ch models.Challenge
	if err := database.DB.First(&ch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Newf(errs.NotFound, "challenge not found")
		}
		return nil, errs.Wrap(err, errs.DatabaseError)
	}
	if ch.State != models.ChallengeStateVisible && !middlewares.IsAdmin(c) {
		return nil, errs.Newf(errs.NotFound, "challenge not found")
	}
	return &ch, nil
}

// List 题目列表，附带解出数与当前账号是否已解出
func (ctl *ChallengeController) List(c *gin.Context) {
	q := database.DB.Model(&models.Challenge{})
	if !middlewares.IsAdmin(c) {
		q = q.Where("state = ?", models.ChallengeStateVisible)
	}
	var list []models.Challenge
	if err := q.Order("id ASC").Find(&list).Error; err != nil {
		utils.Fail(c, errs.Wrap(err, errs.DatabaseError))
		return
	}

	var counts []struct {
		ChallengeID uint32
		Total       int64
	}
	if err := database.DB.Model(&models.Solve{}).
		Select("challenge_id, COUNT(*) AS total").
		Group("challenge_id").
		Scan(&counts).Error; err != nil {
		utils.Fail(c, errs.Wrap(err, errs.DatabaseError))
		return
	}
	solveCount := make(map[uint32]int64, len(counts))
	for _, row := range counts {
		solveCount[row.ChallengeID] = row.Total
	}

	solved := make(map[uint32]bool)
	if acct, err := services.CurrentAccount(c); err == nil {
		var ids []uint32
		if err := services.ScopeToAccount(database.DB.Model(&models.Solve{}), acct, "").
			Pluck("challenge_id", &ids).Error; err != nil {
			utils.Fail(c, errs.Wrap(err, errs.DatabaseError))
			return
		}
		for _, id := range ids {
			solved[id] = true
		}
	}

	items := make([]dto.ChallengeItemResp, 0, len(list))
	for _, ch := range list {
		items = append(items, mappers.MapModelToItemResp(ch, solveCount[ch.ID], solved[ch.ID]))
	}
	utils.Success(c, "success", gin.H{
		"total":      len(items),
		"challenges": items,
	})
}

// Detail 返回题型 read() 的视图
func (ctl *ChallengeController) Detail(c *gin.Context) {
	id, err := parseChallengeID(c)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	ch, err := loadChallenge(c, id)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	t, err := ctl.Registry.Get(ch.Type)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	view, err := t.Read(database.DB, ch)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "success", view)
}

// Attempt 提交答案：限流、判重、次数限制后交由题型判定并记录
func (ctl *ChallengeController) Attempt(c *gin.Context) {
	var req dto.AttemptReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, errs.Wrapf(err, errs.InvalidParams, "invalid params: %v", err))
		return
	}
	acct, err := services.CurrentAccount(c)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	ch, err := loadChallenge(c, req.ChallengeID)
	if err != nil {
		utils.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	allowed, err := services.AllowAttempt(ctx, acct.User.ID)
	if err != nil {
		logger.Warn(ctx, "rate limiter unavailable", zap.Error(err))
		allowed = true
	}
	if !allowed {
		utils.Fail(c, errs.New(errs.TooManyRequests))
		return
	}

	t, err := ctl.Registry.Get(ch.Type)
	if err != nil {
		utils.Fail(c, err)
		return
	}

	solved, err := challenges.HasSolved(database.DB, ch.ID, acct.User.ID, acct.TeamID())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	if solved {
		utils.Success(c, "success", dto.AttemptResp{Status: "already_solved", Message: "You already solved this"})
		return
	}

	if ch.MaxAttempts > 0 {
		var fails int64
		q := database.DB.Model(&models.Submission{}).
			Where("challenge_id = ? AND type = ?", ch.ID, models.SubmissionIncorrect)
		if err := services.ScopeToAccount(q, acct, "").Count(&fails).Error; err != nil {
			utils.Fail(c, errs.Wrap(err, errs.DatabaseError))
			return
		}
		if fails >= int64(ch.MaxAttempts) {
			utils.Fail(c, errs.New(errs.AttemptsExceeded))
			return
		}
	}

	ok, message := t.Attempt(ch, req)
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if ok {
			return t.Solve(tx, acct, ch, req)
		}
		return t.Fail(tx, acct, ch, req)
	})
	if errs.Is(err, errs.AlreadySolved) {
		utils.Success(c, "success", dto.AttemptResp{Status: "already_solved", Message: "You already solved this"})
		return
	}
	if err != nil {
		utils.Fail(c, err)
		return
	}

	if ok {
		services.InvalidateScoreboard(ctx)
		logger.Info(ctx, "challenge solved",
			zap.Uint32("challenge_id", ch.ID),
			zap.Uint32("user_id", acct.User.ID),
		)
	}
	result := mappers.MapAttemptResult(ok, message)
	metrics.Default().ObserveAttempt(ch.Type, result.Status)
	utils.Success(c, "success", result)
}

// ListTypes 已注册题型及其前端资源
func (ctl *ChallengeController) ListTypes(c *gin.Context) {
	types := ctl.Registry.List()
	out := make([]dto.TypeData, 0, len(types))
	for _, t := range types {
		out = append(out, challenges.Describe(t))
	}
	utils.Success(c, "success", out)
}

// AdminCreate 按请求中的 type 调用对应题型的 create()
func (ctl *ChallengeController) AdminCreate(c *gin.Context) {
	var req dto.CreateChallengeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, errs.Wrapf(err, errs.InvalidParams, "invalid params: %v", err))
		return
	}
	req.Normalize()

	t, err := ctl.Registry.Get(req.Type)
	if err != nil {
		utils.Fail(c, errs.Wrapf(err, errs.InvalidParams, "unknown challenge type %q", req.Type))
		return
	}

	var ch *models.Challenge
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		ch, err = t.Create(tx, req)
		return err
	})
	if err != nil {
		utils.Fail(c, err)
		return
	}
	view, err := t.Read(database.DB, ch)
	if err != nil {
		utils.Fail(c, err)
		return
	}

	logger.Info(c.Request.Context(), "challenge created",
		zap.Uint32("challenge_id", ch.ID),
		zap.String("type", ch.Type),
	)
	utils.Success(c, "Challenge created successfully", view)
}

// AdminUpdate 请求体中的字段全部交由题型 update() 赋值
func (ctl *ChallengeController) AdminUpdate(c *gin.Context) {
	id, err := parseChallengeID(c)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		utils.Fail(c, errs.Wrapf(err, errs.InvalidParams, "invalid params: %v", err))
		return
	}
	ch, err := loadChallenge(c, id)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	if typ, ok := fields["type"]; ok && typ != ch.Type {
		utils.Fail(c, errs.Newf(errs.InvalidParams, "challenge type cannot be changed"))
		return
	}
	if state, ok := fields["state"]; ok {
		if s, _ := state.(string); s != string(models.ChallengeStateVisible) && s != string(models.ChallengeStateHidden) {
			utils.Fail(c, errs.Newf(errs.InvalidParams, "state must be visible or hidden"))
			return
		}
	}

	t, err := ctl.Registry.Get(ch.Type)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		ch, err = t.Update(tx, ch, fields)
		return err
	})
	if err != nil {
		utils.Fail(c, err)
		return
	}
	view, err := t.Read(database.DB, ch)
	if err != nil {
		utils.Fail(c, err)
		return
	}

	services.InvalidateScoreboard(c.Request.Context())
	utils.Success(c, "Challenge updated successfully", view)
}

// AdminDelete 删除题目及其全部提交
func (ctl *ChallengeController) AdminDelete(c *gin.Context) {
	id, err := parseChallengeID(c)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	ch, err := loadChallenge(c, id)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	t, err := ctl.Registry.Get(ch.Type)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	if err := database.DB.Transaction(func(tx *gorm.DB) error {
		return t.Delete(tx, ch)
	}); err != nil {
		utils.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	services.InvalidateScoreboard(ctx)
	logger.Info(ctx, "challenge deleted", zap.Uint32("challenge_id", id))
	utils.Success(c, "Challenge deleted successfully", nil)
}
