package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"noteshare-be/internal/dto"
	"noteshare-be/internal/entity"
	"noteshare-be/internal/pkg/mailer"
	"noteshare-be/internal/pkg/serverutils"
	"noteshare-be/internal/pkg/token"
	"noteshare-be/internal/repository/implementation"
	"noteshare-be/internal/repository/specification"
	"noteshare-be/internal/repository/unitofwork"
	"noteshare-be/pkg/events"
	pktNats "noteshare-be/pkg/nats"
	"noteshare-be/pkg/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
	otpTTL          = 15 * time.Minute
)

// dummyHash keeps the bcrypt comparison in the login path even when the email
// is unknown, so response timing does not reveal account existence.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest, ipAddress, userAgent string) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshRequest, ipAddress, userAgent string) (*dto.RefreshResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error
	ResendVerification(ctx context.Context, req *dto.ResendVerificationRequest) error
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	codec          *token.Codec
	emailService   mailer.IEmailService
	eventPublisher *pktNats.Publisher
	resendThrottle *store.ResendThrottle
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	codec *token.Codec,
	emailService mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
	resendThrottle *store.ResendThrottle,
) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		codec:          codec,
		emailService:   emailService,
		eventPublisher: eventPublisher,
		resendThrottle: resendThrottle,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n), nil
}

func (s *authService) signAccessToken(subject uuid.UUID) (string, time.Time, error) {
	expiresAt := time.Now().Add(accessTokenTTL)
	claims := jwt.MapClaims{
		"sub": subject.String(),
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	}
	signed, err := s.codec.Sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func userDTO(user *entity.User) dto.UserDTO {
	return dto.UserDTO{
		Id:       user.Id,
		Email:    user.Email,
		FullName: user.FullName,
		Verified: user.EmailVerified,
	}
}

// Register always answers with the same response shape whether or not the
// email is already taken. Existence only gates the internal side effects:
// persistence and the verification mail. The tokens returned for an already
// registered email reference a subject that does not exist, so they behave
// like an expired session.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest, ipAddress, userAgent string) (*dto.RegisterResponse, error) {
	email := normalizeEmail(req.Email)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}
	hashStr := string(hash)

	now := time.Now()
	user := &entity.User{
		Id:            uuid.New(),
		Email:         email,
		FullName:      req.FullName,
		PasswordHash:  &hashStr,
		EmailVerified: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}

	rawRefreshToken := uuid.New().String()

	if existing == nil {
		otpCode, err := generateOTP()
		if err != nil {
			return nil, serverutils.NewInternal(err)
		}

		created, err := s.createAccount(ctx, uow, user, otpCode, rawRefreshToken, ipAddress, userAgent, now)
		if err != nil {
			return nil, serverutils.NewInternal(err)
		}
		if created {
			go func() {
				if mailErr := s.emailService.SendOTP(email, otpCode); mailErr != nil {
					fmt.Printf("[WARN] Failed to send verification mail: %v\n", mailErr)
				}
			}()

			publishEvent(ctx, s.eventPublisher, events.TypeUserRegistered, map[string]interface{}{
				"user_id": user.Id,
				"time":    now.Format(time.RFC822),
			})
		}
	}

	accessToken, expiresAt, err := s.signAccessToken(user.Id)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}

	return &dto.RegisterResponse{
		User: userDTO(user),
		Tokens: dto.TokenPairDTO{
			AccessToken:  accessToken,
			RefreshToken: rawRefreshToken,
			ExpiresAt:    expiresAt,
		},
	}, nil
}

// createAccount persists the user, verification token, refresh session, and
// pending-invitation links in one transaction. It reports false without error
// when a concurrent registration wins the unique email index; the caller then
// answers exactly like the taken-email path, with nothing persisted.
func (s *authService) createAccount(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User, otpCode, rawRefreshToken, ipAddress, userAgent string, now time.Time) (bool, error) {
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		if errors.Is(err, implementation.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}

	verificationToken := &entity.EmailVerificationToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		Token:     otpCode,
		ExpiresAt: now.Add(otpTTL),
		CreatedAt: now,
	}
	if err := uow.UserRepository().CreateEmailVerificationToken(ctx, verificationToken); err != nil {
		return false, err
	}

	refreshToken := &entity.RefreshToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		TokenHash: hashRefreshToken(rawRefreshToken),
		ExpiresAt: now.Add(refreshTokenTTL),
		CreatedAt: now,
		IpAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := uow.UserRepository().CreateRefreshToken(ctx, refreshToken); err != nil {
		return false, err
	}

	// Resolve invitations that predate this account.
	if err := uow.CollaboratorRepository().AttachUser(ctx, user.Email, user.Id); err != nil {
		return false, err
	}

	if err := uow.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: normalizeEmail(req.Email)})
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}

	storedHash := dummyHash
	if user != nil && user.PasswordHash != nil {
		storedHash = *user.PasswordHash
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(req.Password))

	if user == nil || user.PasswordHash == nil || compareErr != nil {
		return nil, &serverutils.AppError{Code: 401, Message: "Invalid credentials"}
	}

	if !user.EmailVerified {
		return nil, &serverutils.AppError{Code: 401, Message: "Email not verified. Please check your inbox for the verification code"}
	}

	accessToken, expiresAt, err := s.signAccessToken(user.Id)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}

	now := time.Now()
	rawRefreshToken := uuid.New().String()
	refreshToken := &entity.RefreshToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		TokenHash: hashRefreshToken(rawRefreshToken),
		ExpiresAt: now.Add(refreshTokenTTL),
		CreatedAt: now,
		IpAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := uow.UserRepository().CreateRefreshToken(ctx, refreshToken); err != nil {
		return nil, serverutils.NewInternal(err)
	}

	publishEvent(ctx, s.eventPublisher, events.TypeUserLogin, map[string]interface{}{
		"user_id": user.Id,
		"device":  userAgent,
		"time":    now.Format(time.RFC822),
	})

	return &dto.LoginResponse{
		User: userDTO(user),
		Tokens: dto.TokenPairDTO{
			AccessToken:  accessToken,
			RefreshToken: rawRefreshToken,
			ExpiresAt:    expiresAt,
		},
	}, nil
}

// Refresh rotates the presented token: revoke old, issue new, one transaction.
// A crash can therefore never leave the session revoked without a replacement.
func (s *authService) Refresh(ctx context.Context, req *dto.RefreshRequest, ipAddress, userAgent string) (*dto.RefreshResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return nil, serverutils.NewInternal(err)
	}
	defer uow.Rollback()

	tokenHash := hashRefreshToken(req.RefreshToken)
	stored, err := uow.UserRepository().FindRefreshToken(ctx, specification.ByTokenHash{TokenHash: tokenHash})
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}

	now := time.Now()
	if stored == nil || !stored.Active(now) {
		return nil, &serverutils.AppError{Code: 401, Message: "Invalid or expired refresh token"}
	}

	if err := uow.UserRepository().RevokeRefreshToken(ctx, tokenHash); err != nil {
		return nil, serverutils.NewInternal(err)
	}

	rawRefreshToken := uuid.New().String()
	replacement := &entity.RefreshToken{
		Id:        uuid.New(),
		UserId:    stored.UserId,
		TokenHash: hashRefreshToken(rawRefreshToken),
		ExpiresAt: now.Add(refreshTokenTTL),
		CreatedAt: now,
		IpAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := uow.UserRepository().CreateRefreshToken(ctx, replacement); err != nil {
		return nil, serverutils.NewInternal(err)
	}

	if err := uow.Commit(); err != nil {
		return nil, serverutils.NewInternal(err)
	}

	accessToken, expiresAt, err := s.signAccessToken(stored.UserId)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}

	return &dto.RefreshResponse{
		Tokens: dto.TokenPairDTO{
			AccessToken:  accessToken,
			RefreshToken: rawRefreshToken,
			ExpiresAt:    expiresAt,
		},
	}, nil
}

// Logout is idempotent: revoking an unknown or already revoked token means the
// caller is already logged out.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.UserRepository().RevokeRefreshToken(ctx, hashRefreshToken(refreshToken)); err != nil {
		return serverutils.NewInternal(err)
	}
	return nil
}

func (s *authService) VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: normalizeEmail(req.Email)})
	if err != nil {
		return serverutils.NewInternal(err)
	}
	if user == nil {
		return serverutils.NewBadRequest("Invalid verification code")
	}
	if user.EmailVerified {
		return nil
	}

	tokenEntity, err := uow.UserRepository().FindEmailVerificationToken(ctx,
		specification.UserOwnedBy{UserID: user.Id},
		specification.ByToken{Token: req.Token},
	)
	if err != nil {
		return serverutils.NewInternal(err)
	}
	if tokenEntity == nil {
		return serverutils.NewBadRequest("Invalid verification code")
	}
	if time.Now().After(tokenEntity.ExpiresAt) {
		return serverutils.NewBadRequest("Verification code expired")
	}

	if err := uow.Begin(ctx); err != nil {
		return serverutils.NewInternal(err)
	}
	defer uow.Rollback()

	if err := uow.UserRepository().MarkVerified(ctx, user.Id); err != nil {
		return serverutils.NewInternal(err)
	}
	if err := uow.UserRepository().DeleteEmailVerificationToken(ctx, tokenEntity.Id); err != nil {
		return serverutils.NewInternal(err)
	}

	if err := uow.CollaboratorRepository().AttachUser(ctx, user.Email, user.Id); err != nil {
		return serverutils.NewInternal(err)
	}

	if err := uow.Commit(); err != nil {
		return serverutils.NewInternal(err)
	}
	return nil
}

// ResendVerification always succeeds from the caller's perspective; whether a
// mail actually goes out depends on account state and the resend throttle.
func (s *authService) ResendVerification(ctx context.Context, req *dto.ResendVerificationRequest) error {
	email := normalizeEmail(req.Email)

	allowed, err := s.resendThrottle.Allow(ctx, email)
	if err != nil {
		fmt.Printf("[WARN] resend throttle unavailable: %v\n", err)
	}
	if !allowed {
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return serverutils.NewInternal(err)
	}
	if user == nil || user.EmailVerified {
		return nil
	}

	otpCode, err := generateOTP()
	if err != nil {
		return serverutils.NewInternal(err)
	}

	now := time.Now()
	verificationToken := &entity.EmailVerificationToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		Token:     otpCode,
		ExpiresAt: now.Add(otpTTL),
		CreatedAt: now,
	}
	if err := uow.UserRepository().CreateEmailVerificationToken(ctx, verificationToken); err != nil {
		return serverutils.NewInternal(err)
	}

	go func() {
		if mailErr := s.emailService.SendOTP(email, otpCode); mailErr != nil {
			fmt.Printf("[WARN] Failed to resend verification mail: %v\n", mailErr)
		}
	}()

	return nil
}

// publishEvent is best effort. The bus being down must never fail a request.
func publishEvent(ctx context.Context, publisher *pktNats.Publisher, eventType string, data map[string]interface{}) {
	if publisher == nil {
		return
	}
	event := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := publisher.Publish(ctx, event); err != nil {
		fmt.Printf("[WARN] Failed to publish %s event: %v\n", eventType, err)
	}
}
