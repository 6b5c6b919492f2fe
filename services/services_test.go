package services

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"manualctf/challenges"
	"manualctf/config"
	"manualctf/errs"
	"manualctf/models"
	"manualctf/testutil"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func seedChallenge(t *testing.T, db *gorm.DB, name string, value int) models.Challenge {
	t.Helper()
	ch := models.Challenge{Name: name, Value: value, State: models.ChallengeStateVisible, Type: "standard"}
	if err := db.Create(&ch).Error; err != nil {
		t.Fatalf("create challenge failed: %v", err)
	}
	return ch
}

func seedSolve(t *testing.T, db *gorm.DB, ch models.Challenge, user models.User, teamID *uint32, at time.Time) {
	t.Helper()
	sub := models.Submission{ChallengeID: ch.ID, UserID: user.ID, TeamID: teamID, Type: models.SubmissionCorrect, Date: at}
	if err := db.Create(&sub).Error; err != nil {
		t.Fatalf("create submission failed: %v", err)
	}
	solve := models.Solve{ID: sub.ID, ChallengeID: ch.ID, UserID: user.ID, TeamID: teamID}
	if err := db.Create(&solve).Error; err != nil {
		t.Fatalf("create solve failed: %v", err)
	}
}

func TestStandingsUsersMode(t *testing.T) {
	db := testutil.SetupDB(t)
	alice := testutil.CreateUser(t, db, "alice", models.RoleUser)
	bob := testutil.CreateUser(t, db, "bob", models.RoleUser)
	easy := seedChallenge(t, db, "easy", 100)
	hard := seedChallenge(t, db, "hard", 300)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	seedSolve(t, db, easy, alice, nil, base)
	seedSolve(t, db, easy, bob, nil, base.Add(time.Minute))
	seedSolve(t, db, hard, bob, nil, base.Add(2*time.Minute))

	standings, err := Standings(context.Background(), config.ModeUsers)
	if err != nil {
		t.Fatalf("standings failed: %v", err)
	}
	if len(standings) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(standings))
	}
	if standings[0].Name != "bob" || standings[0].Score != 400 || standings[0].Rank != 1 {
		t.Fatalf("unexpected leader: %+v", standings[0])
	}
	if standings[1].Name != "alice" || standings[1].Score != 100 {
		t.Fatalf("unexpected second: %+v", standings[1])
	}
}

func TestStandingsTieBreakAndCache(t *testing.T) {
	db := testutil.SetupDB(t)
	mr := testutil.SetupRedis(t)
	alice := testutil.CreateUser(t, db, "alice", models.RoleUser)
	bob := testutil.CreateUser(t, db, "bob", models.RoleUser)
	red := testutil.CreateTeam(t, db, "red", alice)
	blue := testutil.CreateTeam(t, db, "blue", bob)
	ch := seedChallenge(t, db, "warmup", 100)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	seedSolve(t, db, ch, bob, &blue.ID, base)
	seedSolve(t, db, ch, alice, &red.ID, base.Add(time.Minute))

	standings, err := Standings(context.Background(), config.ModeTeams)
	if err != nil {
		t.Fatalf("standings failed: %v", err)
	}
	if len(standings) != 2 || standings[0].Name != "blue" {
		t.Fatalf("expected earlier solver first: %+v", standings)
	}
	if !mr.Exists("scoreboard:teams") {
		t.Fatalf("expected scoreboard to be cached")
	}

	if _, err := Standings(context.Background(), config.ModeUsers); err != nil {
		t.Fatalf("users standings failed: %v", err)
	}
	if err := mr.Set("scoreboard:other", "keep"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	InvalidateScoreboard(context.Background())
	if mr.Exists("scoreboard:teams") || mr.Exists("scoreboard:users") {
		t.Fatalf("expected both mode caches to be cleared")
	}
	if !mr.Exists("scoreboard:other") {
		t.Fatalf("only the scoreboard mode keys should be deleted")
	}

	// a failing redis is logged, not propagated
	mr.SetError("READONLY")
	InvalidateScoreboard(context.Background())
	mr.SetError("")
}

func TestAllowAttempt(t *testing.T) {
	mr := testutil.SetupRedis(t)
	cfg := config.Default()
	cfg.RateLimit.Attempts = 2
	cfg.RateLimit.Window = time.Minute
	testutil.UseConfig(t, cfg)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		ok, err := AllowAttempt(ctx, 5)
		if err != nil || !ok {
			t.Fatalf("attempt %d should pass: %v %v", i, ok, err)
		}
	}
	ok, err := AllowAttempt(ctx, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected third attempt to be limited")
	}
	if ok, _ := AllowAttempt(ctx, 6); !ok {
		t.Fatalf("other users must not share the bucket")
	}

	mr.FastForward(2 * time.Minute)
	if ok, _ := AllowAttempt(ctx, 5); !ok {
		t.Fatalf("expected window to reset")
	}
}

func TestAllowAttemptRepairsMissingTTL(t *testing.T) {
	mr := testutil.SetupRedis(t)
	cfg := config.Default()
	cfg.RateLimit.Attempts = 3
	cfg.RateLimit.Window = time.Minute
	testutil.UseConfig(t, cfg)

	// counter left behind without an expiry
	if err := mr.Set(attemptKey(7), "1"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	ctx := context.Background()
	results := make([]bool, 0, 3)
	for i := 0; i < 3; i++ {
		ok, err := AllowAttempt(ctx, 7)
		if err != nil {
			t.Fatalf("attempt %d failed: %v", i, err)
		}
		results = append(results, ok)
	}
	if !results[0] || !results[1] || results[2] {
		t.Fatalf("unexpected limiter results: %v", results)
	}
	if ttl := mr.TTL(attemptKey(7)); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected expiry to be restored, got %v", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if ok, err := AllowAttempt(ctx, 7); err != nil || !ok {
		t.Fatalf("expected user to recover after the window: %v %v", ok, err)
	}
}

func TestAllowAttemptWithoutRedis(t *testing.T) {
	ok, err := AllowAttempt(context.Background(), 1)
	if err != nil || !ok {
		t.Fatalf("expected pass-through without redis")
	}
}

func newContext(userID interface{}) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	if userID != nil {
		c.Set("user_id", userID)
	}
	return c
}

func TestCurrentAccount(t *testing.T) {
	db := testutil.SetupDB(t)
	alice := testutil.CreateUser(t, db, "alice", models.RoleUser)
	loner := testutil.CreateUser(t, db, "loner", models.RoleUser)
	team := testutil.CreateTeam(t, db, "red", alice)

	teams := config.Default()
	testutil.UseConfig(t, teams)

	if _, err := CurrentAccount(newContext(nil)); !errs.Is(err, errs.Unauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	acct, err := CurrentAccount(newContext(alice.ID))
	if err != nil {
		t.Fatalf("current account failed: %v", err)
	}
	if acct.Team == nil || acct.Team.ID != team.ID {
		t.Fatalf("expected team to be resolved: %+v", acct)
	}
	if _, err := CurrentAccount(newContext(loner.ID)); !errs.Is(err, errs.TeamRequired) {
		t.Fatalf("expected team required, got %v", err)
	}

	users := config.Default()
	users.Mode = config.ModeUsers
	config.SetConfig(users)
	acct, err = CurrentAccount(newContext(loner.ID))
	if err != nil {
		t.Fatalf("users mode account failed: %v", err)
	}
	if acct.Team != nil || acct.TeamID() != nil {
		t.Fatalf("expected no team in users mode")
	}
}

func TestScopeToAccount(t *testing.T) {
	db := testutil.SetupDB(t)
	alice := testutil.CreateUser(t, db, "alice", models.RoleUser)
	bob := testutil.CreateUser(t, db, "bob", models.RoleUser)
	team := testutil.CreateTeam(t, db, "red", alice, bob)
	ch := seedChallenge(t, db, "x", 10)

	for _, u := range []models.User{alice, bob} {
		sub := models.Submission{ChallengeID: ch.ID, UserID: u.ID, TeamID: &team.ID, Type: models.SubmissionIncorrect}
		if err := db.Create(&sub).Error; err != nil {
			t.Fatalf("create submission failed: %v", err)
		}
	}

	var count int64
	ScopeToAccount(db.Model(&models.Submission{}), challenges.Account{User: &alice, Team: &team}, "").Count(&count)
	if count != 2 {
		t.Fatalf("team scope should see both rows, got %d", count)
	}
	ScopeToAccount(db.Model(&models.Submission{}), challenges.Account{User: &alice}, "").Count(&count)
	if count != 1 {
		t.Fatalf("user scope should see one row, got %d", count)
	}
}
