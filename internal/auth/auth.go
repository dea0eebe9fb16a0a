package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	jwtlib "awaaznow/internal/lib/jwt"
	sl "awaaznow/internal/lib/logger"
	"awaaznow/internal/lib/reset"
	"awaaznow/internal/models"
	"awaaznow/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidResetToken  = errors.New("invalid or expired password reset token")
	ErrEmailSendFailed    = errors.New("reset email could not be sent")
)

type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	mail        MailSender
	tokenSecret string
	tokenTTL    time.Duration
	resetTTL    time.Duration
	frontendURL string
}

type UserSaver interface {
	SaveUser(ctx context.Context, email string, username string, passHash []byte) (uid int64, err error)
	SetResetToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, userID int64) error
	UpdatePassword(ctx context.Context, userID int64, passHash []byte) error
}

type UserProvider interface {
	User(ctx context.Context, email string) (models.User, error)
	UserByResetToken(ctx context.Context, tokenHash string) (models.User, error)
}

type MailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	mail MailSender,
	tokenSecret string,
	tokenTTL, resetTTL time.Duration,
	frontendURL string,
) *Auth {
	return &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		mail:        mail,
		tokenSecret: tokenSecret,
		tokenTTL:    tokenTTL,
		resetTTL:    resetTTL,
		frontendURL: frontendURL,
	}
}

// Register creates the user and returns the new id with a session token.
func (a *Auth) Register(
	ctx context.Context,
	email string,
	username string,
	pass string,
) (int64, string, error) {
	const op = "auth.Register"

	log := a.log.With(slog.String("op", op))

	passHash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return 0, "", fmt.Errorf("%s: %w", op, err)
	}

	id, err := a.usrSaver.SaveUser(ctx, email, username, passHash)
	if err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			log.Warn("email already registered")
			return 0, "", ErrEmailTaken
		}
		if errors.Is(err, storage.ErrUsernameTaken) {
			log.Warn("username already taken")
			return 0, "", ErrUsernameTaken
		}

		log.Error("failed to save user", sl.Err(err))
		return 0, "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := jwtlib.NewToken(id, a.tokenSecret, a.tokenTTL)
	if err != nil {
		log.Error("failed to generate session token", sl.Err(err))
		return 0, "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.Int64("uid", id))

	return id, token, nil
}

// Login checks the credentials and returns the user with a session token.
// Unknown email and wrong password are deliberately the same error so the
// response cannot be used to enumerate accounts.
func (a *Auth) Login(
	ctx context.Context,
	email, password string,
) (models.User, string, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.User(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return models.User{}, "", ErrInvalidCredentials
		}

		log.Error("failed to get user", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))
		return models.User{}, "", ErrInvalidCredentials
	}

	token, err := jwtlib.NewToken(user.ID, a.tokenSecret, a.tokenTTL)
	if err != nil {
		log.Error("failed to generate session token", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in successfully", slog.Int64("uid", user.ID))

	user.PassHash = nil

	return user, token, nil
}

// ForgotPassword issues a reset token and mails the raw value inside a
// reset link. An unknown email succeeds silently so the endpoint cannot
// confirm whether an address is registered. If the email cannot be
// delivered the stored token is rolled back.
func (a *Auth) ForgotPassword(ctx context.Context, email string) error {
	const op = "auth.ForgotPassword"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.User(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("password reset requested for unregistered email")
			return nil
		}

		log.Error("failed to get user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	rawToken, tokenHash, err := reset.NewToken()
	if err != nil {
		log.Error("failed to generate reset token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	expiresAt := time.Now().Add(a.resetTTL)

	if err := a.usrSaver.SetResetToken(ctx, user.ID, tokenHash, expiresAt); err != nil {
		log.Error("failed to store reset token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", a.frontendURL, rawToken)

	if err := a.mail.Send(ctx, user.Email, "AwaazNow Password Reset Request", resetEmailBody(resetURL)); err != nil {
		log.Error("failed to send reset email, rolling back token", sl.Err(err))

		if clearErr := a.usrSaver.ClearResetToken(ctx, user.ID); clearErr != nil {
			log.Error("failed to clear reset token after send failure", sl.Err(clearErr))
		}

		return ErrEmailSendFailed
	}

	log.Info("password reset email sent", slog.Int64("uid", user.ID))

	return nil
}

// ResetPassword consumes a raw reset token. The lookup goes through the
// token hash and the stored expiry, and the password update clears the
// reset fields, so a token works at most once.
func (a *Auth) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	const op = "auth.ResetPassword"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByResetToken(ctx, reset.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("reset token not found or expired")
			return ErrInvalidResetToken
		}

		log.Error("failed to look up reset token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.usrSaver.UpdatePassword(ctx, user.ID, passHash); err != nil {
		log.Error("failed to update password", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("password reset successful", slog.Int64("uid", user.ID))

	return nil
}

func resetEmailBody(resetURL string) string {
	return fmt.Sprintf(`<h1>Password Reset Requested</h1>
<p>You have requested a password reset for your AwaazNow account.</p>
<p>Click the link below to reset your password:</p>
<a href="%s" target="_blank">%s</a>
<p>This link will expire in 10 minutes. If you did not request this, please ignore this email.</p>
<p>The AwaazNow Team</p>`, resetURL, resetURL)
}
