// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pilotify/pilotify-api/internal/config"
	"github.com/pilotify/pilotify-api/internal/db"
	"github.com/pilotify/pilotify-api/internal/models"
	"github.com/pilotify/pilotify-api/internal/utils"
)

const Password = "secret123"

// OpenDB returns a migrated, private in-memory SQLite database.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Connect(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file::memory:?_foreign_keys=on",
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

var hashed string

func passwordHash(t *testing.T) string {
	t.Helper()
	if hashed == "" {
		h, err := utils.HashPassword(Password)
		require.NoError(t, err)
		hashed = h
	}
	return hashed
}

func User(t *testing.T, gdb *gorm.DB, role models.Role, name string) *models.User {
	t.Helper()
	u := &models.User{
		Email:    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Password: passwordHash(t),
		Name:     name,
		Role:     role,
	}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

func Project(t *testing.T, gdb *gorm.DB, title string, corp, inno *models.User, at time.Time) *models.PilotProject {
	t.Helper()
	p := &models.PilotProject{
		Title:       title,
		CorporateID: corp.ID,
		InnovatorID: inno.ID,
		CreatedAt:   at,
	}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

func Offer(t *testing.T, gdb *gorm.DB, title string, owner *models.User, at time.Time) *models.Offer {
	t.Helper()
	o := &models.Offer{
		Title:        title,
		Description:  title + " description",
		Price:        1000,
		Duration:     "4 weeks",
		Deliverables: "report",
		ContactEmail: owner.Email,
		OwnerID:      owner.ID,
		CreatedAt:    at,
	}
	require.NoError(t, gdb.Create(o).Error)
	return o
}

func Comment(t *testing.T, gdb *gorm.DB, p *models.PilotProject, author *models.User, text string, at time.Time) *models.Comment {
	t.Helper()
	c := &models.Comment{PilotProjectID: p.ID, UserID: author.ID, Text: text, CreatedAt: at}
	require.NoError(t, gdb.Create(c).Error)
	return c
}

func Reaction(t *testing.T, gdb *gorm.DB, c *models.Comment, by *models.User, typ string, at time.Time) *models.Reaction {
	t.Helper()
	r := &models.Reaction{CommentID: c.ID, UserID: by.ID, Type: typ, CreatedAt: at}
	require.NoError(t, gdb.Create(r).Error)
	return r
}

func Review(t *testing.T, gdb *gorm.DB, p *models.PilotProject, by *models.User, comment string, at time.Time) *models.Review {
	t.Helper()
	r := &models.Review{PilotProjectID: p.ID, ReviewerID: by.ID, Rating: 5, Comment: comment, CreatedAt: at}
	require.NoError(t, gdb.Create(r).Error)
	return r
}

// At returns a fixed UTC instant offset by the given number of minutes.
func At(min int) time.Time {
	return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(min) * time.Minute)
}

func Ptr[T any](v T) *T { return &v }

func ID() uuid.UUID { return uuid.New() }
