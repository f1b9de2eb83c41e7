// Package auth signs users up and in against the local store and keeps the
// current session as a signed token on disk.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sadopc/hibidash/internal/store"
)

var (
	ErrInvalidEmail       = errors.New("please enter a valid email address")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoSession          = errors.New("not signed in")
)

const (
	MinPasswordLength = 6
	secretMetaKey     = "auth.jwt_secret"
	defaultTTL        = 30 * 24 * time.Hour
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks credentials before any store call is made.
func Validate(email, password string) error {
	if !emailRe.MatchString(strings.TrimSpace(email)) {
		return ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Options configures a Service. Zero values pick defaults.
type Options struct {
	SessionPath string
	Secret      string
	TTL         time.Duration
	Logger      *slog.Logger
}

type Service struct {
	db          *store.Store
	sessionPath string
	secret      []byte
	ttl         time.Duration
	logger      *slog.Logger
}

// New builds a Service. Without an explicit secret one is generated on first
// use and kept in the store so sessions survive restarts.
func New(db *store.Store, opts Options) (*Service, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.SessionPath == "" {
		return nil, fmt.Errorf("auth: session path is required")
	}
	secret := opts.Secret
	if secret == "" {
		var err error
		secret, err = loadOrCreateSecret(db)
		if err != nil {
			return nil, err
		}
	}
	return &Service{
		db:          db,
		sessionPath: opts.SessionPath,
		secret:      []byte(secret),
		ttl:         opts.TTL,
		logger:      opts.Logger,
	}, nil
}

func loadOrCreateSecret(db *store.Store) (string, error) {
	secret, err := db.GetMeta(secretMetaKey)
	if err == nil {
		return secret, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("load signing secret: %w", err)
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate signing secret: %w", err)
	}
	secret = hex.EncodeToString(buf)
	if err := db.SetMeta(secretMetaKey, secret); err != nil {
		return "", fmt.Errorf("store signing secret: %w", err)
	}
	return secret, nil
}

// SignUp creates the account, provisions its default settings and starts a
// session.
func (s *Service) SignUp(email, password string) (*store.User, error) {
	if err := Validate(email, password); err != nil {
		return nil, err
	}
	if _, err := s.db.GetUserByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.db.CreateUser(email, string(hash))
	if err != nil {
		return nil, err
	}
	if _, err := s.db.EnsureUserSettings(u.ID); err != nil {
		return nil, err
	}
	if err := s.writeSession(u); err != nil {
		return nil, err
	}
	s.logger.Info("User signed up", slog.String("user", u.ID))
	return u, nil
}

func (s *Service) SignIn(email, password string) (*store.User, error) {
	if err := Validate(email, password); err != nil {
		return nil, err
	}
	u, err := s.db.GetUserByEmail(email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.writeSession(u); err != nil {
		return nil, err
	}
	s.logger.Info("User signed in", slog.String("user", u.ID))
	return u, nil
}

// CurrentUser returns the user of the saved session, or ErrNoSession when
// there is none or it no longer verifies.
func (s *Service) CurrentUser() (*store.User, error) {
	data, err := os.ReadFile(s.sessionPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	claims, err := parseToken(s.secret, strings.TrimSpace(string(data)))
	if err != nil {
		s.logger.Debug("Discarding invalid session", slog.String("error", err.Error()))
		return nil, ErrNoSession
	}
	u, err := s.db.GetUser(claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoSession
	}
	return u, err
}

func (s *Service) SignOut() error {
	if err := os.Remove(s.sessionPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func (s *Service) writeSession(u *store.User) error {
	token, err := signToken(s.secret, u.ID, u.Email, s.ttl)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.sessionPath), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.sessionPath, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
