package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"progresshub/internal/db"
	"progresshub/internal/domain"
	"progresshub/internal/email"
	"progresshub/internal/repository"
)

// UserService coordina registro, confirmacion y login por password.
type UserService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	emailSender email.Sender
	limiter     RateLimiter
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, emailSender email.Sender, limiter RateLimiter) *UserService {
	if limiter == nil {
		limiter = NewRateLimiter(confirmCodeTTL, 5)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		logger:      logger,
		users:       users,
		emailSender: emailSender,
		limiter:     limiter,
	}
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user already registered")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrAlreadyConfirmed   = errors.New("email already confirmed")
	ErrCodeNotRequested   = errors.New("confirmation code not requested")
	ErrCodeExpired        = errors.New("confirmation code expired")
	ErrCodeInvalid        = errors.New("confirmation code invalid")
	ErrEmailSendFailure   = errors.New("email send failed")
	ErrRateLimited        = errors.New("rate limited")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrInvalidEmail       = errors.New("invalid email")
)

const (
	confirmCodeTTL    = 10 * time.Minute
	minPasswordLength = 6
)

// SignUpInput son los datos de registro por email y password.
type SignUpInput struct {
	Email       string
	Password    string
	DisplayName string
}

// SignUp crea un usuario sin confirmar y le envia el codigo de confirmacion.
func (s *UserService) SignUp(ctx context.Context, input SignUpInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	emailAddr := normalizeEmail(input.Email)
	if !isValidEmail(emailAddr) {
		return domain.User{}, ErrInvalidEmail
	}
	if len(input.Password) < minPasswordLength {
		return domain.User{}, ErrWeakPassword
	}
	if !s.limiter.Allow("signup:" + emailAddr) {
		return domain.User{}, ErrRateLimited
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	code, codeHash, expiresAt, err := generateConfirmCode()
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:               uuid.NewString(),
		Email:            emailAddr,
		DisplayName:      strings.TrimSpace(input.DisplayName),
		PasswordHash:     string(hashBytes),
		ConfirmCodeHash:  codeHash,
		ConfirmExpiresAt: &expiresAt,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	if err := s.sendCode(ctx, emailAddr, code, expiresAt); err != nil {
		return user, err
	}
	return user, nil
}

// ResendConfirmation emite un codigo nuevo para un usuario aun sin confirmar.
func (s *UserService) ResendConfirmation(ctx context.Context, emailAddr string) error {
	if s.users == nil {
		return errors.New("user service not configured")
	}
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if !s.limiter.Allow("confirm:" + emailAddr) {
		return ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if user.Confirmed() {
		return ErrAlreadyConfirmed
	}

	code, codeHash, expiresAt, err := generateConfirmCode()
	if err != nil {
		return err
	}
	if err := s.users.UpdateConfirmCode(ctx, user.ID, codeHash, expiresAt); err != nil {
		return err
	}
	return s.sendCode(ctx, emailAddr, code, expiresAt)
}

// ConfirmEmail valida el codigo enviado al registrarse y marca el email como confirmado.
func (s *UserService) ConfirmEmail(ctx context.Context, emailAddr, code string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}
	if !isValidConfirmCode(code) {
		return domain.User{}, ErrCodeInvalid
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	if user.Confirmed() {
		return domain.User{}, ErrAlreadyConfirmed
	}
	if user.ConfirmCodeHash == "" || user.ConfirmExpiresAt == nil {
		return domain.User{}, ErrCodeNotRequested
	}
	if time.Now().UTC().After(*user.ConfirmExpiresAt) {
		return domain.User{}, ErrCodeExpired
	}
	if !verifyConfirmCode(code, user.ConfirmCodeHash) {
		return domain.User{}, ErrCodeInvalid
	}

	confirmedAt := time.Now().UTC()
	if err := s.users.ConfirmEmail(ctx, user.ID, confirmedAt); err != nil {
		return domain.User{}, err
	}

	user.EmailConfirmedAt = &confirmedAt
	user.ConfirmCodeHash = ""
	user.ConfirmExpiresAt = nil
	return user, nil
}

// Authenticate valida email y password. Usuario inexistente y password incorrecto
// devuelven el mismo error.
func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if !s.limiter.Allow("signin:" + emailAddr) {
		return domain.User{}, ErrRateLimited
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	if !user.Confirmed() {
		return domain.User{}, ErrEmailNotConfirmed
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) sendCode(ctx context.Context, emailAddr, code string, expiresAt time.Time) error {
	if s.emailSender == nil {
		return ErrEmailSendFailure
	}
	if err := s.emailSender.SendConfirmationCode(ctx, emailAddr, code, expiresAt); err != nil {
		s.logger.Warn("send confirmation code failed", zap.Error(err), zap.String("email", emailAddr))
		return ErrEmailSendFailure
	}
	return nil
}

func generateConfirmCode() (string, string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", "", time.Time{}, err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", "", time.Time{}, err
	}
	saltStr := base64.StdEncoding.EncodeToString(salt)
	hashBytes := sha256.Sum256([]byte(saltStr + ":" + code))
	hash := base64.StdEncoding.EncodeToString(hashBytes[:])

	expiresAt := time.Now().UTC().Add(confirmCodeTTL)
	return code, saltStr + ":" + hash, expiresAt, nil
}

func verifyConfirmCode(code, stored string) bool {
	parts := strings.Split(stored, ":")
	if len(parts) != 2 {
		return false
	}
	saltStr := parts[0]
	expectedHash := parts[1]
	hashBytes := sha256.Sum256([]byte(saltStr + ":" + code))
	hash := base64.StdEncoding.EncodeToString(hashBytes[:])
	return subtle.ConstantTimeCompare([]byte(hash), []byte(expectedHash)) == 1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at != strings.LastIndexByte(email, '@') {
		return false
	}
	domainPart := email[at+1:]
	return strings.Contains(domainPart, ".") && !strings.ContainsAny(email, " \t\r\n")
}

func isValidConfirmCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
