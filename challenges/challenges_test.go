package challenges

import (
	"testing"

	"manualctf/dto"
	"manualctf/errs"
	"manualctf/models"
	"manualctf/testutil"

	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(StandardChallenge{}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := reg.Register(StandardChallenge{}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	got, err := reg.Get(StandardTypeID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.ID() != StandardTypeID {
		t.Fatalf("unexpected type: %s", got.ID())
	}
	if _, err := reg.Get("nope"); !errs.Is(err, errs.UnknownChalType) {
		t.Fatalf("expected unknown type error, got %v", err)
	}
	if len(reg.List()) != 1 {
		t.Fatalf("unexpected list size")
	}
}

func TestStandardAttempt(t *testing.T) {
	ch := &models.Challenge{StaticFlag: "flag{ok}"}
	cases := []struct {
		name       string
		submission *string
		want       bool
	}{
		{name: "exact", submission: strPtr("flag{ok}"), want: true},
		{name: "trimmed", submission: strPtr("  flag{ok}\n"), want: true},
		{name: "wrong", submission: strPtr("flag{no}"), want: false},
		{name: "missing", submission: nil, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, _ := StandardChallenge{}.Attempt(ch, dto.AttemptReq{Submission: tc.submission})
			if ok != tc.want {
				t.Fatalf("want %v got %v", tc.want, ok)
			}
		})
	}
}

func TestSplitFields(t *testing.T) {
	base, ext, err := SplitFields(map[string]interface{}{"name": "x", "initial": 5}, "initial")
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if base["name"] != "x" || ext["initial"] != 5 {
		t.Fatalf("unexpected split: %v %v", base, ext)
	}
	if _, _, err := SplitFields(map[string]interface{}{"bogus": 1}); !errs.Is(err, errs.InvalidParams) {
		t.Fatalf("expected invalid params, got %v", err)
	}
}

func TestToInt(t *testing.T) {
	cases := []struct {
		in      interface{}
		want    int
		wantErr bool
	}{
		{in: float64(100), want: 100},
		{in: 7, want: 7},
		{in: "42", want: 42},
		{in: 1.5, wantErr: true},
		{in: true, wantErr: true},
	}
	for _, tc := range cases {
		got, err := ToInt(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("expected error for %v", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ToInt(%v) = %d, %v", tc.in, got, err)
		}
	}
}

func TestStandardLifecycle(t *testing.T) {
	db := testutil.SetupDB(t)
	std := StandardChallenge{}
	user := testutil.CreateUser(t, db, "alice", models.RoleUser)
	acct := Account{User: &user, IP: "10.0.0.1"}

	if _, err := std.Create(db, dto.CreateChallengeReq{Name: "no flag", State: "visible"}); !errs.Is(err, errs.InvalidParams) {
		t.Fatalf("expected missing flag error, got %v", err)
	}

	ch, err := std.Create(db, dto.CreateChallengeReq{Name: "warmup", Value: 50, State: "visible", Flag: "flag{ok}"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := std.Fail(db, acct, ch, dto.AttemptReq{Submission: strPtr(" nope ")}); err != nil {
		t.Fatalf("fail failed: %v", err)
	}
	var wrong models.Submission
	if err := db.Where("type = ?", models.SubmissionIncorrect).First(&wrong).Error; err != nil {
		t.Fatalf("load incorrect submission failed: %v", err)
	}
	if wrong.Provided != "nope" || wrong.IP != "10.0.0.1" || wrong.TeamID != nil {
		t.Fatalf("unexpected incorrect submission: %+v", wrong)
	}

	if err := std.Solve(db, acct, ch, dto.AttemptReq{Submission: strPtr("flag{ok}")}); err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if err := std.Solve(db, acct, ch, dto.AttemptReq{Submission: strPtr("flag{ok}")}); !errs.Is(err, errs.AlreadySolved) {
		t.Fatalf("expected already solved, got %v", err)
	}

	var solve models.Solve
	if err := db.First(&solve).Error; err != nil {
		t.Fatalf("load solve failed: %v", err)
	}
	var correct models.Submission
	if err := db.First(&correct, solve.ID).Error; err != nil {
		t.Fatalf("load correct submission failed: %v", err)
	}
	if correct.Type != models.SubmissionCorrect || correct.Provided != "flag{ok}" {
		t.Fatalf("unexpected correct submission: %+v", correct)
	}

	updated, err := std.Update(db, ch, map[string]interface{}{"value": float64(75), "state": "hidden"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Value != 75 || updated.State != models.ChallengeStateHidden {
		t.Fatalf("unexpected update: %+v", updated)
	}

	if err := std.Delete(db, ch); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	var count int64
	db.Model(&models.Submission{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected submissions removed, got %d", count)
	}
	db.Model(&models.Solve{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected solves removed, got %d", count)
	}
}

func TestHasSolvedTeamScope(t *testing.T) {
	db := testutil.SetupDB(t)
	alice := testutil.CreateUser(t, db, "alice", models.RoleUser)
	bob := testutil.CreateUser(t, db, "bob", models.RoleUser)
	team := testutil.CreateTeam(t, db, "red", alice, bob)
	teamID := team.ID

	if _, err := RecordSolve(db, models.Submission{ChallengeID: 1, UserID: alice.ID, TeamID: &teamID}); err != nil {
		t.Fatalf("record solve failed: %v", err)
	}
	solved, err := HasSolved(db, 1, bob.ID, &teamID)
	if err != nil {
		t.Fatalf("has solved failed: %v", err)
	}
	if !solved {
		t.Fatalf("expected teammate solve to count")
	}
	solved, err = HasSolved(db, 1, bob.ID, nil)
	if err != nil {
		t.Fatalf("has solved failed: %v", err)
	}
	if solved {
		t.Fatalf("expected per-user scope to ignore teammate")
	}
}

func TestRecordSolveUniqueIndexRace(t *testing.T) {
	db := testutil.SetupDB(t)
	alice := testutil.CreateUser(t, db, "alice", models.RoleUser)
	bob := testutil.CreateUser(t, db, "bob", models.RoleUser)
	team := testutil.CreateTeam(t, db, "red", alice, bob)
	teamID := team.ID

	// a teammate's solve lands after HasSolved ran but before our insert
	fired := false
	err := db.Callback().Create().Before("gorm:create").Register("race:teammate_solve", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "dalictf_solve" {
			return
		}
		fired = true
		_, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			"INSERT INTO dalictf_solve (id, challenge_id, user_id, team_id) VALUES (?, ?, ?, ?)",
			999, 1, bob.ID, teamID)
		if err != nil {
			t.Errorf("insert competing solve failed: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("register callback failed: %v", err)
	}

	_, err = RecordSolve(db, models.Submission{ChallengeID: 1, UserID: alice.ID, TeamID: &teamID})
	if !fired {
		t.Fatalf("expected competing solve to be inserted")
	}
	if !errs.Is(err, errs.AlreadySolved) {
		t.Fatalf("expected AlreadySolved from unique index, got %v", err)
	}
}
