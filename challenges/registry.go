package challenges

import (
	"fmt"
	"sort"
	"sync"

	"manualctf/dto"
	"manualctf/errs"
	"manualctf/models"

	"gorm.io/gorm"
)

// Account 提交者身份，Team 在个人模式下为 nil
type Account struct {
	User *models.User
	Team *models.Team
	IP   string
}

// TeamID 个人模式下返回 nil
func (a Account) TeamID() *uint32 {
	if a.Team == nil {
		return nil
	}
	id := a.Team.ID
	return &id
}

// Type 题型需向主程序提供的全部能力，带 tx 的方法运行在调用方事务内
type Type interface {
	ID() string
	Name() string
	Templates() map[string]string
	Scripts() map[string]string

	Create(tx *gorm.DB, req dto.CreateChallengeReq) (*models.Challenge, error)
	Read(tx *gorm.DB, ch *models.Challenge) (*dto.ChallengeView, error)
	Update(tx *gorm.DB, ch *models.Challenge, fields map[string]interface{}) (*models.Challenge, error)
	Delete(tx *gorm.DB, ch *models.Challenge) error

	// Attempt 只判定结果，随后由主程序调用 Solve 或 Fail
	Attempt(ch *models.Challenge, req dto.AttemptReq) (bool, string)
	Solve(tx *gorm.DB, acct Account, ch *models.Challenge, req dto.AttemptReq) error
	Fail(tx *gorm.DB, acct Account, ch *models.Challenge, req dto.AttemptReq) error
}

// Registry 题型注册表，进程启动时显式注册
type Registry struct {
	mu    sync.RWMutex
	types map[string]Type
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[string]Type)}
}

func (r *Registry) Register(t Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[t.ID()]; ok {
		return fmt.Errorf("challenge type %q already registered", t.ID())
	}
	r.types[t.ID()] = t
	return nil
}

func (r *Registry) Get(id string) (Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[id]
	if !ok {
		return nil, errs.Newf(errs.UnknownChalType, "unknown challenge type %q", id)
	}
	return t, nil
}

// List 按题型 ID 排序返回已注册题型
func (r *Registry) List() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Type, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Describe 生成随 Read 一起返回的题型静态信息
func Describe(t Type) dto.TypeData {
	return dto.TypeData{
		ID:        t.ID(),
		Name:      t.Name(),
		Templates: t.Templates(),
		Scripts:   t.Scripts(),
	}
}
