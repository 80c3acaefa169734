package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"marquee/internal/apperr"
	"marquee/internal/store"
)

const (
	issuer            = "marquee"
	minPasswordLength = 6
)

// Token is a signed session token handed to a signed-in user.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
}

type claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Accounts manages users and issues and verifies their session tokens.
type Accounts struct {
	db     *sql.DB
	secret []byte
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time
}

// NewAccounts creates an account service. secret signs session tokens.
func NewAccounts(db *sql.DB, secret []byte, ttl time.Duration, log *zap.Logger) (*Accounts, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("session secret must be at least 16 bytes")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Accounts{db: db, secret: secret, ttl: ttl, log: log, now: time.Now}, nil
}

// SignUp creates a new account.
func (a *Accounts) SignUp(ctx context.Context, email, password string) (*Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, apperr.BadRequest(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	id := uuid.NewString()
	now := store.Millis(a.now())
	_, err = a.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, email, string(hash), now, now)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, apperr.Conflict("an account with this email already exists")
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	a.log.Info("account created", zap.String("user_id", id))
	return &Identity{UserID: id, Email: email}, nil
}

// SignIn checks credentials and returns a fresh session token.
func (a *Accounts) SignIn(ctx context.Context, email, password string) (*Token, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	var id, hash string
	err = a.db.QueryRowContext(ctx, `SELECT id, password_hash FROM users WHERE email = ?`, email).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotAuthenticated, "invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, apperr.New(apperr.KindNotAuthenticated, "invalid credentials")
	}

	now := a.now()
	if _, err := a.db.ExecContext(ctx, `UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`,
		store.Millis(now), store.Millis(now), id); err != nil {
		a.log.Warn("recording last login failed", zap.String("user_id", id), zap.Error(err))
	}

	tok, err := a.issue(id, email, now)
	if err != nil {
		return nil, err
	}
	a.log.Info("user signed in", zap.String("user_id", id))
	return tok, nil
}

func (a *Accounts) issue(userID, email string, now time.Time) (*Token, error) {
	expires := now.Add(a.ttl)
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expires),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Email: email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("signing session token: %w", err)
	}

	return &Token{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expires.UTC(),
		UserID:      userID,
		Email:       email,
	}, nil
}

// Verify validates a session token and confirms its user still exists.
func (a *Accounts) Verify(ctx context.Context, token string) (*Identity, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindNotAuthenticated, "invalid or expired session", err)
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.Subject == "" {
		return nil, apperr.New(apperr.KindNotAuthenticated, "invalid or expired session")
	}

	var exists int
	err = a.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, c.Subject).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotAuthenticated, "account no longer exists")
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	return &Identity{UserID: c.Subject, Email: c.Email}, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.BadRequest(fmt.Sprintf("invalid email address %q", email))
	}
	return email, nil
}
