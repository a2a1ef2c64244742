package model

import "time"

// User represents a platform account, student or admin.
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	// TOTPSecret is set only for admins with 2FA provisioned.
	TOTPSecret *string   `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// LoginRequest is the payload for password authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

// VerifyOTPRequest is the payload for the admin 2FA check.
type VerifyOTPRequest struct {
	Code string `json:"code" binding:"required,len=6,numeric"`
}
