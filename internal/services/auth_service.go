package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/vocalia/vocalia-backend/internal/apps"
	"github.com/vocalia/vocalia-backend/internal/config"
	"github.com/vocalia/vocalia-backend/internal/dto"
	"github.com/vocalia/vocalia-backend/internal/mailer"
	"github.com/vocalia/vocalia-backend/internal/models"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrUserNotFound       = errors.New("user not found")
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type AuthService struct {
	db            *gorm.DB
	cfg           *config.Config
	registry      *apps.Registry
	mailer        *mailer.Mailer
	subscriptions *SubscriptionService
	google        *oauth2.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config, registry *apps.Registry, mail *mailer.Mailer, subs *SubscriptionService) *AuthService {
	return &AuthService{
		db:            db,
		cfg:           cfg,
		registry:      registry,
		mailer:        mail,
		subscriptions: subs,
		google: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// Register creates an unverified account, sends the verification mail and
// signs the user in right away. Sign-in stays blocked until the email is
// verified.
func (s *AuthService) Register(appID string, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        email,
		Password:     string(hash),
		Role:         models.RoleUser,
		AuthProvider: "email",
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if _, err := s.subscriptions.Subscribe(user.ID, models.PlanTypeFree); err != nil {
		slog.Warn("could not start free subscription", "user_id", user.ID, "error", err)
	}

	if err := s.sendVerificationMail(appID, &user); err != nil {
		slog.Error("verification mail failed", "user_id", user.ID, "error", err)
	}
	if err := s.mailer.SendWelcome(user.Email, user.Name); err != nil {
		slog.Error("welcome mail failed", "user_id", user.ID, "error", err)
	}

	return s.issueSession(appID, &user)
}

func (s *AuthService) Login(appID string, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.AuthProvider == "email" && !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return s.issueSession(appID, &user)
}

// ValidateSession resolves a session id from a verified token to its user.
// Expired sessions are revoked on sight.
func (s *AuthService) ValidateSession(sessionID uuid.UUID) (*models.User, error) {
	var session models.Session
	if err := s.db.Where("id = ? AND revoked = false", sessionID).First(&session).Error; err != nil {
		return nil, ErrInvalidSession
	}

	if time.Now().After(session.ExpiresAt) {
		s.db.Model(&session).Update("revoked", true)
		return nil, ErrInvalidSession
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", session.UserID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (s *AuthService) Logout(sessionID uuid.UUID) error {
	return s.db.Model(&models.Session{}).
		Where("id = ?", sessionID).
		Update("revoked", true).Error
}

func (s *AuthService) VerifyEmail(token string) error {
	record, err := s.consumeToken(token, models.TokenPurposeEmailVerification)
	if err != nil {
		return err
	}
	return s.db.Model(&models.User{}).
		Where("id = ?", record.UserID).
		Update("email_verified", true).Error
}

// RequestPasswordReset never reports whether the email exists.
func (s *AuthService) RequestPasswordReset(appID string, email string) error {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		return nil
	}

	raw, err := s.createToken(&user, models.TokenPurposePasswordReset, time.Hour)
	if err != nil {
		return err
	}

	link := s.appLink(appID, "/reset-password?token="+raw)
	if err := s.mailer.SendPasswordReset(user.Email, user.Name, link); err != nil {
		slog.Error("password reset mail failed", "user_id", user.ID, "error", err)
	}
	return nil
}

// ResetPassword consumes the reset token, replaces the hash and revokes
// every open session of the user.
func (s *AuthService) ResetPassword(token, newPassword string) error {
	record, err := s.consumeToken(token, models.TokenPurposePasswordReset)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("id = ?", record.UserID).
			Update("password", string(hash)).Error; err != nil {
			return err
		}
		return tx.Model(&models.Session{}).
			Where("user_id = ?", record.UserID).
			Update("revoked", true).Error
	})
}

// GoogleAuthURL builds the consent redirect for the Google code flow.
func (s *AuthService) GoogleAuthURL(state string) string {
	return s.google.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleSignIn exchanges the callback code, fetches the profile and signs
// the matching user in, creating the account on first contact. Google
// accounts count as verified.
func (s *AuthService) GoogleSignIn(ctx context.Context, appID, code string) (*dto.AuthResponse, error) {
	tok, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google code exchange failed: %w", err)
	}

	resp, err := s.google.Client(ctx, tok).Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("google userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("google userinfo decode failed: %w", err)
	}
	if info.Email == "" {
		return nil, errors.New("google account has no email")
	}

	email := strings.ToLower(info.Email)

	var user models.User
	err = s.db.Where("google_id = ? OR email = ?", info.ID, email).First(&user).Error
	if err != nil {
		user = models.User{
			ID:            uuid.New(),
			Name:          info.Name,
			Email:         email,
			Role:          models.RoleUser,
			AuthProvider:  "google",
			GoogleID:      &info.ID,
			EmailVerified: true,
		}
		if user.Name == "" {
			user.Name = strings.Split(email, "@")[0]
		}
		if info.Picture != "" {
			user.Avatar = &info.Picture
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create google user: %w", err)
		}
		if _, err := s.subscriptions.Subscribe(user.ID, models.PlanTypeFree); err != nil {
			slog.Warn("could not start free subscription", "user_id", user.ID, "error", err)
		}
	} else if user.GoogleID == nil {
		s.db.Model(&user).Updates(map[string]interface{}{
			"google_id":      info.ID,
			"email_verified": true,
		})
		user.GoogleID = &info.ID
		user.EmailVerified = true
	}

	return s.issueSession(appID, &user)
}

func (s *AuthService) issueSession(appID string, user *models.User) (*dto.AuthResponse, error) {
	session := models.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		AppID:     appID,
		ExpiresAt: time.Now().Add(s.cfg.SessionExpiry),
	}

	claims := jwt.MapClaims{
		"sub":    user.ID.String(),
		"email":  user.Email,
		"role":   user.Role,
		"sid":    session.ID.String(),
		"app_id": appID,
		"iat":    time.Now().Unix(),
		"exp":    session.ExpiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.AuthSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	session.TokenHash = hashToken(signed)
	if err := s.db.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return &dto.AuthResponse{
		Token: signed,
		User:  dto.NewUserResponse(user),
	}, nil
}

func (s *AuthService) sendVerificationMail(appID string, user *models.User) error {
	raw, err := s.createToken(user, models.TokenPurposeEmailVerification, 24*time.Hour)
	if err != nil {
		return err
	}
	link := s.appLink(appID, "/verify-email?token="+raw)
	return s.mailer.SendVerification(user.Email, user.Name, link)
}

func (s *AuthService) createToken(user *models.User, purpose string, ttl time.Duration) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	raw := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.VerificationToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(raw),
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return raw, nil
}

func (s *AuthService) consumeToken(raw, purpose string) (*models.VerificationToken, error) {
	var record models.VerificationToken
	err := s.db.
		Where("token_hash = ? AND purpose = ? AND consumed_at IS NULL", hashToken(raw), purpose).
		First(&record).Error
	if err != nil {
		return nil, ErrInvalidToken
	}
	if time.Now().After(record.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	now := time.Now()
	if err := s.db.Model(&record).Update("consumed_at", &now).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// appLink resolves a frontend path against the requesting app's origin.
func (s *AuthService) appLink(appID, path string) string {
	cfg := s.registry.Get(appID)
	if cfg == nil {
		cfg = s.registry.Default()
	}
	if cfg == nil {
		return path
	}
	return cfg.Origin + path
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
