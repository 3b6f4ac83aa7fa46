package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pilotify/pilotify-api/internal/models"
	"github.com/pilotify/pilotify-api/internal/utils"
)

type seedUser struct {
	Email       string
	Password    string
	Name        string
	Role        models.Role
	CompanyName string
}

var seedUsers = []seedUser{
	{Email: "innovator@example.com", Password: "innovator123", Name: "Ivy Innovator", Role: models.RoleInnovator, CompanyName: "InnovateCo"},
	{Email: "corporate@example.com", Password: "corporate123", Name: "Carl Corporate", Role: models.RoleCorporate, CompanyName: "GlobalCorp"},
	{Email: "admin@example.com", Password: "admin123", Name: "Admin", Role: models.RoleAdmin},
}

// Seed creates the demo accounts. Existing emails are left untouched, so
// it can run on every deploy. It returns how many users were created.
func Seed(ctx context.Context, gdb *gorm.DB) (int, error) {
	created := 0
	for _, s := range seedUsers {
		var n int64
		if err := gdb.WithContext(ctx).Model(&models.User{}).Where("email = ?", s.Email).Count(&n).Error; err != nil {
			return created, fmt.Errorf("seed %s: %w", s.Email, err)
		}
		if n > 0 {
			continue
		}
		hash, err := utils.HashPassword(s.Password)
		if err != nil {
			return created, err
		}
		u := models.User{
			Email:       s.Email,
			Password:    hash,
			Name:        s.Name,
			Role:        s.Role,
			CompanyName: s.CompanyName,
		}
		if err := gdb.WithContext(ctx).Create(&u).Error; err != nil {
			return created, fmt.Errorf("seed %s: %w", s.Email, err)
		}
		created++
	}
	return created, nil
}
