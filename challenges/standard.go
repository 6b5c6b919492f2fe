package challenges

import (
	"manualctf/dto"
	"manualctf/errs"
	"manualctf/models"

	"gorm.io/gorm"
)

const StandardTypeID = "standard"

// StandardChallenge 静态 Flag 题型，自动判题
type StandardChallenge struct{}

var _ Type = StandardChallenge{}

func (StandardChallenge) ID() string   { return StandardTypeID }
func (StandardChallenge) Name() string { return StandardTypeID }

func (StandardChallenge) Templates() map[string]string {
	return map[string]string{
		"create": "/plugins/challenges/assets/create.html",
		"update": "/plugins/challenges/assets/update.html",
		"view":   "/plugins/challenges/assets/view.html",
	}
}

func (StandardChallenge) Scripts() map[string]string {
	return map[string]string{
		"create": "/plugins/challenges/assets/create.js",
		"update": "/plugins/challenges/assets/update.js",
		"view":   "/plugins/challenges/assets/view.js",
	}
}

func (s StandardChallenge) Create(tx *gorm.DB, req dto.CreateChallengeReq) (*models.Challenge, error) {
	if req.Flag == "" {
		return nil, errs.Newf(errs.InvalidParams, "standard challenges require a flag")
	}
	return CreateBase(tx, s.ID(), req)
}

func (s StandardChallenge) Read(tx *gorm.DB, ch *models.Challenge) (*dto.ChallengeView, error) {
	return ReadBase(s, ch), nil
}

func (StandardChallenge) Update(tx *gorm.DB, ch *models.Challenge, fields map[string]interface{}) (*models.Challenge, error) {
	base, _, err := SplitFields(fields)
	if err != nil {
		return nil, err
	}
	if err := UpdateBase(tx, ch, base); err != nil {
		return nil, err
	}
	return ch, nil
}

func (StandardChallenge) Delete(tx *gorm.DB, ch *models.Challenge) error {
	return DeleteBase(tx, ch)
}

func (StandardChallenge) Attempt(ch *models.Challenge, req dto.AttemptReq) (bool, string) {
	provided, err := Provided(req)
	if err != nil || ch.StaticFlag == "" {
		return false, "Incorrect"
	}
	if provided == ch.StaticFlag {
		return true, "Correct"
	}
	return false, "Incorrect"
}

func (StandardChallenge) Solve(tx *gorm.DB, acct Account, ch *models.Challenge, req dto.AttemptReq) error {
	provided, err := Provided(req)
	if err != nil {
		return err
	}
	_, err = RecordSolve(tx, models.Submission{
		ChallengeID: ch.ID,
		UserID:      acct.User.ID,
		TeamID:      acct.TeamID(),
		IP:          acct.IP,
		Provided:    provided,
	})
	return err
}

func (StandardChallenge) Fail(tx *gorm.DB, acct Account, ch *models.Challenge, req dto.AttemptReq) error {
	provided, err := Provided(req)
	if err != nil {
		return err
	}
	_, err = RecordSubmission(tx, acct, ch, provided, models.SubmissionIncorrect)
	return err
}
