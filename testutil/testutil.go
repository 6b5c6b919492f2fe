// Package testutil wires in-memory SQLite and miniredis into the global
// database handles for package tests.
package testutil

import (
	"fmt"
	"testing"

	"manualctf/config"
	"manualctf/database"
	"manualctf/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SetupDB opens a private in-memory SQLite database, migrates host tables plus
// extra, and installs it as database.DB until the test ends.
func SetupDB(t *testing.T, extra ...interface{}) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := database.MigrateTables(db, extra...); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SetupRedis starts miniredis and installs a client as database.RDB.
func SetupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	prev := database.RDB
	database.RDB = client
	t.Cleanup(func() {
		database.RDB = prev
		_ = client.Close()
	})
	return mr
}

// UseConfig installs cfg globally for the duration of the test.
func UseConfig(t *testing.T, cfg *config.Config) {
	t.Helper()
	prev := config.GetConfig()
	config.SetConfig(cfg)
	t.Cleanup(func() { config.SetConfig(prev) })
}

// CreateUser inserts a user with a fixed password.
func CreateUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

// CreateTeam inserts a team led by leader and registers the membership.
func CreateTeam(t *testing.T, db *gorm.DB, name string, leader models.User, members ...models.User) models.Team {
	t.Helper()
	team := models.Team{
		TeamName:       name,
		LeaderID:       leader.ID,
		InvitationCode: uuid.NewString()[:12],
	}
	if err := db.Create(&team).Error; err != nil {
		t.Fatalf("create team failed: %v", err)
	}
	rows := []models.TeamMember{{TeamID: team.ID, UserID: leader.ID, Role: models.TeamRoleLeader}}
	for _, m := range members {
		rows = append(rows, models.TeamMember{TeamID: team.ID, UserID: m.ID, Role: models.TeamRoleMember})
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("create team members failed: %v", err)
	}
	return team
}
