package models

// UserModel represents a registered account. The password column stores a
// bcrypt hash, never plaintext.
type UserModel struct {
	Base
	Email    string `json:"email" gorm:"uniqueIndex;size:100;not null"`
	Password string `json:"-"     gorm:"size:100;not null"`
	Name     string `json:"name"  gorm:"size:120;not null"`
}

func (UserModel) TableName() string { return "users" }
