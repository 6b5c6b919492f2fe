package manual

import (
	"errors"
	"net/http"
	"strconv"

	"manualctf/challenges"
	"manualctf/config"
	"manualctf/database"
	"manualctf/dto"
	"manualctf/errs"
	"manualctf/logger"
	"manualctf/metrics"
	"manualctf/models"
	"manualctf/services"
	"manualctf/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/gin-gonic/gin/render"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const gradePath = "/manual/grade"

// Grade 待审队列，最新提交在前；浏览器访问返回页面，Accept JSON 时返回数据
func Grade(c *gin.Context) {
	items, err := services.ListSubmissions(services.SubmissionFilter{Type: SubmissionTypePending})
	if err != nil {
		utils.Fail(c, err)
		return
	}

	switch c.NegotiateFormat(binding.MIMEHTML, binding.MIMEJSON) {
	case binding.MIMEJSON:
		utils.Success(c, "success", gin.H{
			"total":       len(items),
			"submissions": items,
		})
	default:
		c.Render(http.StatusOK, render.HTML{
			Template: gradeTemplate,
			Name:     "grade.html",
			Data: gin.H{
				"Teams":       config.GetConfig().Mode == config.ModeTeams,
				"Submissions": items,
			},
		})
	}
}

// Submissions 当前账号在某题上的已通过与待审提交
func Submissions(c *gin.Context) {
	challengeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Fail(c, errs.New(errs.InvalidID))
		return
	}
	acct, err := services.CurrentAccount(c)
	if err != nil {
		utils.Fail(c, err)
		return
	}

	load := func(typ models.SubmissionType) ([]dto.SubmissionEntry, error) {
		var rows []models.Submission
		q := database.DB.Where("challenge_id = ? AND type = ?", challengeID, typ)
		if err := services.ScopeToAccount(q, acct, "").Order("id ASC").Find(&rows).Error; err != nil {
			return nil, errs.Wrap(err, errs.DatabaseError)
		}
		entries := make([]dto.SubmissionEntry, 0, len(rows))
		for _, s := range rows {
			entries = append(entries, dto.SubmissionEntry{Date: s.Date, Provided: s.Provided})
		}
		return entries, nil
	}

	correct, err := load(models.SubmissionCorrect)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	pending, err := load(SubmissionTypePending)
	if err != nil {
		utils.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"correct": correct,
			"pending": pending,
		},
	})
}

// lockPending 加锁读取待审提交，不存在或已处理时返回 NotFound
func lockPending(tx *gorm.DB, id uint64) (*models.Submission, error) {
	var sub models.Submission
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND type = ?", id, SubmissionTypePending).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Newf(errs.NotFound, "pending submission %d not found", id)
		}
		return nil, errs.Wrap(err, errs.DatabaseError)
	}
	return &sub, nil
}

// Approve 将待审提交转为解题记录并删除原提交，随后跳回评审页
func Approve(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.Fail(c, errs.New(errs.InvalidID))
		return
	}

	var solve *models.Solve
	var pending *models.Submission
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		sub, err := lockPending(tx, id)
		if err != nil {
			return err
		}
		pending = sub
		sub.Type = models.SubmissionCorrect

		solve, err = challenges.RecordSolve(tx, *sub)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.Submission{}, sub.ID).Error; err != nil {
			return errs.Wrap(err, errs.DatabaseError)
		}
		return nil
	})
	if err != nil {
		utils.Fail(c, err)
		return
	}

	ctx := c.Request.Context()
	services.InvalidateScoreboard(ctx)
	metrics.Default().IncApproval()
	logger.Info(ctx, "manual submission approved",
		zap.Uint64("submission_id", id),
		zap.Uint64("solve_id", solve.ID),
		zap.Uint32("challenge_id", pending.ChallengeID),
		zap.Uint32("user_id", pending.UserID),
	)
	c.Redirect(http.StatusFound, gradePath)
}

// Reject 将待审提交标记为错误
func Reject(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.Fail(c, errs.New(errs.InvalidID))
		return
	}

	var pending *models.Submission
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		sub, err := lockPending(tx, id)
		if err != nil {
			return err
		}
		pending = sub
		if err := tx.Model(sub).Update("type", models.SubmissionIncorrect).Error; err != nil {
			return errs.Wrap(err, errs.DatabaseError)
		}
		return nil
	})
	if err != nil {
		utils.Fail(c, err)
		return
	}

	metrics.Default().IncRejection()
	logger.Info(c.Request.Context(), "manual submission rejected",
		zap.Uint64("submission_id", id),
		zap.Uint32("challenge_id", pending.ChallengeID),
		zap.Uint32("user_id", pending.UserID),
	)
	c.Redirect(http.StatusFound, gradePath)
}
