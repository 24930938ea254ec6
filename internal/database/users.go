package database

import (
	"errors"

	"github.com/devopsenabler/identity-core/internal/models"
	"gorm.io/gorm"
)

// Users is the GORM-backed credential store.
type Users struct{ db *gorm.DB }

func NewUsers(db *gorm.DB) *Users { return &Users{db: db} }

// FindByEmail returns the user for email, or (nil, nil) when no such user exists.
func (u *Users) FindByEmail(email string) (*models.UserModel, error) {
	var user models.UserModel
	if err := u.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user. The email column carries a unique index, so a
// concurrent duplicate insert fails at the database even when the caller's
// pre-check passed.
func (u *Users) Create(user *models.UserModel) error {
	return u.db.Create(user).Error
}
