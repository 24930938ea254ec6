package auth

import "errors"

type RegisterDTO struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"     binding:"required"`
}

type LoginDTO struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Status      bool   `json:"status"`
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
}

type profileResponse struct {
	LoggedInAs string `json:"logged_in_as"`
	Name       string `json:"name"`
}

var (
	errDuplicateUser = errors.New("user already registered")
	// errBadCredentials covers both unknown email and wrong password so the
	// caller cannot tell the two apart.
	errBadCredentials = errors.New("bad credentials")
)
