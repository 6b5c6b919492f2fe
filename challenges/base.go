package challenges

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"manualctf/dto"
	"manualctf/errs"
	"manualctf/models"

	"gorm.io/gorm"
)

// CreateBase 写入题目基表，题型扩展表由各题型自行写入
func CreateBase(tx *gorm.DB, typeID string, req dto.CreateChallengeReq) (*models.Challenge, error) {
	if req.Name == "" {
		return nil, errs.Newf(errs.InvalidParams, "name is required")
	}
	state := models.ChallengeState(req.State)
	if state != models.ChallengeStateVisible && state != models.ChallengeStateHidden {
		return nil, errs.Newf(errs.InvalidParams, "state must be visible or hidden")
	}
	ch := models.Challenge{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Value:       req.Value,
		MaxAttempts: req.MaxAttempts,
		State:       state,
		Type:        typeID,
		StaticFlag:  req.Flag,
	}
	if err := tx.Create(&ch).Error; err != nil {
		return nil, errs.Wrap(err, errs.DatabaseError)
	}
	return &ch, nil
}

// ReadBase 填充各题型共有的展示字段
func ReadBase(t Type, ch *models.Challenge) *dto.ChallengeView {
	return &dto.ChallengeView{
		ID:          ch.ID,
		Name:        ch.Name,
		Value:       ch.Value,
		Description: ch.Description,
		Category:    ch.Category,
		State:       string(ch.State),
		MaxAttempts: ch.MaxAttempts,
		Type:        ch.Type,
		TypeData:    Describe(t),
	}
}

// SplitFields 把更新字段拆成基表列与题型扩展键，其余键一律拒绝
func SplitFields(fields map[string]interface{}, extKeys ...string) (base, ext map[string]interface{}, err error) {
	base = make(map[string]interface{})
	ext = make(map[string]interface{})
	for k, v := range fields {
		if _, ok := models.ChallengeColumns[k]; ok {
			base[k] = v
			continue
		}
		known := false
		for _, e := range extKeys {
			if k == e {
				known = true
				break
			}
		}
		if !known {
			return nil, nil, errs.Newf(errs.InvalidParams, "unknown challenge field %q", k)
		}
		ext[k] = v
	}
	return base, ext, nil
}

// UpdateBase 将输入中出现的基表字段逐一赋值并保存，随后重新加载
func UpdateBase(tx *gorm.DB, ch *models.Challenge, base map[string]interface{}) error {
	for _, key := range []string{"value", "max_attempts"} {
		if v, ok := base[key]; ok {
			n, err := ToInt(v)
			if err != nil {
				return errs.Wrapf(err, errs.InvalidParams, "%s must be an integer", key)
			}
			base[key] = n
		}
	}
	if len(base) > 0 {
		if err := tx.Model(ch).Updates(base).Error; err != nil {
			return errs.Wrap(err, errs.DatabaseError)
		}
	}
	if err := tx.First(ch, ch.ID).Error; err != nil {
		return errs.Wrap(err, errs.DatabaseError)
	}
	return nil
}

// DeleteBase 删除题目及其全部提交与解题记录
func DeleteBase(tx *gorm.DB, ch *models.Challenge) error {
	if err := tx.Where("challenge_id = ?", ch.ID).Delete(&models.Solve{}).Error; err != nil {
		return errs.Wrap(err, errs.DatabaseError)
	}
	if err := tx.Where("challenge_id = ?", ch.ID).Delete(&models.Submission{}).Error; err != nil {
		return errs.Wrap(err, errs.DatabaseError)
	}
	if err := tx.Delete(ch).Error; err != nil {
		return errs.Wrap(err, errs.DatabaseError)
	}
	return nil
}

// Provided 返回去除首尾空白的答案，缺少 submission 时报参数错误
func Provided(req dto.AttemptReq) (string, error) {
	if req.Submission == nil {
		return "", errs.Newf(errs.InvalidParams, "submission is required")
	}
	return strings.TrimSpace(*req.Submission), nil
}

// HasSolved 个人模式按用户判定，队伍模式下同队任一成员解出即算
func HasSolved(tx *gorm.DB, challengeID, userID uint32, teamID *uint32) (bool, error) {
	q := tx.Model(&models.Solve{}).Where("challenge_id = ?", challengeID)
	if teamID != nil {
		q = q.Where("user_id = ? OR team_id = ?", userID, *teamID)
	} else {
		q = q.Where("user_id = ?", userID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, errs.Wrap(err, errs.DatabaseError)
	}
	return count > 0, nil
}

// RecordSolve 按 src 写入一条 correct 提交及对应的解题记录
func RecordSolve(tx *gorm.DB, src models.Submission) (*models.Solve, error) {
	solved, err := HasSolved(tx, src.ChallengeID, src.UserID, src.TeamID)
	if err != nil {
		return nil, err
	}
	if solved {
		return nil, errs.New(errs.AlreadySolved)
	}
	sub := models.Submission{
		ChallengeID: src.ChallengeID,
		UserID:      src.UserID,
		TeamID:      src.TeamID,
		IP:          src.IP,
		Provided:    src.Provided,
		Type:        models.SubmissionCorrect,
	}
	if err := tx.Create(&sub).Error; err != nil {
		return nil, errs.Wrap(err, errs.DatabaseError)
	}
	solve := models.Solve{
		ID:          sub.ID,
		ChallengeID: sub.ChallengeID,
		UserID:      sub.UserID,
		TeamID:      sub.TeamID,
	}
	if err := tx.Create(&solve).Error; err != nil {
		// 并发评审同一账号的两条待审提交时，唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errs.New(errs.AlreadySolved)
		}
		return nil, errs.Wrap(err, errs.DatabaseError)
	}
	return &solve, nil
}

// RecordSubmission 写入指定类型的非解题提交
func RecordSubmission(tx *gorm.DB, acct Account, ch *models.Challenge, provided string, typ models.SubmissionType) (*models.Submission, error) {
	sub := models.Submission{
		ChallengeID: ch.ID,
		UserID:      acct.User.ID,
		TeamID:      acct.TeamID(),
		IP:          acct.IP,
		Provided:    provided,
		Type:        typ,
	}
	if err := tx.Create(&sub).Error; err != nil {
		return nil, errs.Wrap(err, errs.DatabaseError)
	}
	return &sub, nil
}

var errNotInteger = errors.New("not an integer")

// ToInt 兼容 JSON 解码出的数字与数字字符串
func ToInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, errNotInteger
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	default:
		return 0, errNotInteger
	}
}
