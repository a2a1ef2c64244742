package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pquerna/otp/totp"

	"github.com/examhall/examhall-backend/internal/config"
	"github.com/examhall/examhall-backend/internal/model"
	"github.com/examhall/examhall-backend/internal/repository"
)

// OTP errors.
var (
	ErrOTPNotProvisioned = errors.New("no TOTP secret provisioned for this account")
	ErrOTPInvalid        = errors.New("invalid one-time passcode")
)

// OTPService handles the admin second factor. Only the TOTP check lives
// here; delivery of provisioning material (QR/email) is up to the
// operator tooling.
type OTPService struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
}

// NewOTPService creates a new OTPService.
func NewOTPService(cfg *config.Config, userRepo *repository.UserRepository) *OTPService {
	return &OTPService{cfg: cfg, userRepo: userRepo}
}

// GenerateSecret provisions a new TOTP secret for an admin account and
// returns the otpauth:// provisioning URL.
func (s *OTPService) GenerateSecret(ctx context.Context, user *model.User) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.cfg.TOTPIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		return "", fmt.Errorf("generate totp secret: %w", err)
	}
	secret := key.Secret()
	if err := s.userRepo.SetTOTPSecret(ctx, user.ID, secret); err != nil {
		return "", fmt.Errorf("store totp secret: %w", err)
	}
	return key.URL(), nil
}

// Verify checks a 6-digit code against the admin's provisioned secret.
func (s *OTPService) Verify(ctx context.Context, userID int, code string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if user.TOTPSecret == nil || *user.TOTPSecret == "" {
		return ErrOTPNotProvisioned
	}
	if !totp.Validate(code, *user.TOTPSecret) {
		return ErrOTPInvalid
	}
	return nil
}
