package manual

import (
	"errors"

	"manualctf/challenges"
	"manualctf/dto"
	"manualctf/errs"
	"manualctf/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	TypeID     = "manual"
	AssetsPath = "/plugins/manual-challenges/assets/"
)

// Challenge 人工评审题型：提交永远不会被自动判定，只进入待审队列
type Challenge struct{}

var _ challenges.Type = Challenge{}

func (Challenge) ID() string   { return TypeID }
func (Challenge) Name() string { return TypeID }

func (Challenge) Templates() map[string]string {
	return map[string]string{
		"create": AssetsPath + "create.html",
		"update": "/plugins/challenges/assets/update.html",
		"view":   AssetsPath + "view.html",
	}
}

func (Challenge) Scripts() map[string]string {
	return map[string]string{
		"create": "/plugins/challenges/assets/create.js",
		"update": "/plugins/challenges/assets/update.js",
		"view":   AssetsPath + "view.js",
	}
}

// Create 写入基表和扩展表，initial 取提交的分值
func (m Challenge) Create(tx *gorm.DB, req dto.CreateChallengeReq) (*models.Challenge, error) {
	req.Flag = ""
	ch, err := challenges.CreateBase(tx, m.ID(), req)
	if err != nil {
		return nil, err
	}
	ext := ManualChallenge{ChallengeID: ch.ID, Initial: ch.Value}
	if err := tx.Create(&ext).Error; err != nil {
		return nil, errs.Wrap(err, errs.DatabaseError)
	}
	return ch, nil
}

func (m Challenge) Read(tx *gorm.DB, ch *models.Challenge) (*dto.ChallengeView, error) {
	view := challenges.ReadBase(m, ch)
	var ext ManualChallenge
	err := tx.First(&ext, "challenge_id = ?", ch.ID).Error
	switch {
	case err == nil:
		view.Initial = &ext.Initial
	case errors.Is(err, gorm.ErrRecordNotFound):
		initial := ch.Value
		view.Initial = &initial
	default:
		return nil, errs.Wrap(err, errs.DatabaseError)
	}
	return view, nil
}

// Update 输入中出现的字段全部赋值，initial 写入扩展表
func (Challenge) Update(tx *gorm.DB, ch *models.Challenge, fields map[string]interface{}) (*models.Challenge, error) {
	base, ext, err := challenges.SplitFields(fields, "initial")
	if err != nil {
		return nil, err
	}
	if v, ok := ext["initial"]; ok {
		initial, err := challenges.ToInt(v)
		if err != nil {
			return nil, errs.Wrapf(err, errs.InvalidParams, "initial must be an integer")
		}
		row := ManualChallenge{ChallengeID: ch.ID, Initial: initial}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "challenge_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"initial"}),
		}).Create(&row).Error; err != nil {
			return nil, errs.Wrap(err, errs.DatabaseError)
		}
	}
	if err := challenges.UpdateBase(tx, ch, base); err != nil {
		return nil, err
	}
	return ch, nil
}

func (Challenge) Delete(tx *gorm.DB, ch *models.Challenge) error {
	if err := tx.Where("challenge_id = ?", ch.ID).Delete(&ManualChallenge{}).Error; err != nil {
		return errs.Wrap(err, errs.DatabaseError)
	}
	return challenges.DeleteBase(tx, ch)
}

// Attempt 从不自动判题
func (Challenge) Attempt(ch *models.Challenge, req dto.AttemptReq) (bool, string) {
	return false, "Pending"
}

// Solve 直接记录解题，正常流程由评审通过接口完成
func (Challenge) Solve(tx *gorm.DB, acct challenges.Account, ch *models.Challenge, req dto.AttemptReq) error {
	provided, err := challenges.Provided(req)
	if err != nil {
		return err
	}
	_, err = challenges.RecordSolve(tx, models.Submission{
		ChallengeID: ch.ID,
		UserID:      acct.User.ID,
		TeamID:      acct.TeamID(),
		IP:          acct.IP,
		Provided:    provided,
	})
	return err
}

// Fail 记录一条待审提交
func (Challenge) Fail(tx *gorm.DB, acct challenges.Account, ch *models.Challenge, req dto.AttemptReq) error {
	provided, err := challenges.Provided(req)
	if err != nil {
		return err
	}
	_, err = challenges.RecordSubmission(tx, acct, ch, provided, SubmissionTypePending)
	return err
}
