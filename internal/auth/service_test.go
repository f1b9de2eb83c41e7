package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/hibidash/internal/store"
)

func newService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	db, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	svc, err := New(db, Options{SessionPath: filepath.Join(t.TempDir(), "session")})
	require.NoError(t, err)
	return svc, db
}

func TestValidate(t *testing.T) {
	tests := []struct {
		email, password string
		want            error
	}{
		{"me@example.com", "secret", nil},
		{"not-an-email", "secret", ErrInvalidEmail},
		{"", "secret", ErrInvalidEmail},
		{"me@example.com", "12345", ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.email+"/"+tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.email, tt.password))
		})
	}
}

func TestSignUpCreatesSettingsAndSession(t *testing.T) {
	svc, db := newService(t)

	u, err := svc.SignUp("new@example.com", "password")
	require.NoError(t, err)

	settings, err := db.GetUserSettings(u.ID)
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.True(t, settings.AnimeTrackerEnabled)

	cur, err := svc.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, u.ID, cur.ID)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.SignUp("dup@example.com", "password")
	require.NoError(t, err)
	_, err = svc.SignUp("DUP@example.com", "password")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignUpValidatesBeforeStore(t *testing.T) {
	svc, db := newService(t)
	_, err := svc.SignUp("bad", "password")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = db.GetUserByEmail("bad")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSignInAndOut(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.SignUp("me@example.com", "password")
	require.NoError(t, err)
	require.NoError(t, svc.SignOut())

	_, err = svc.CurrentUser()
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = svc.SignIn("me@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.SignIn("nobody@example.com", "password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	u, err := svc.SignIn("me@example.com", "password")
	require.NoError(t, err)
	cur, err := svc.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, u.ID, cur.ID)

	require.NoError(t, svc.SignOut())
	require.NoError(t, svc.SignOut(), "signing out twice is harmless")
}

func TestTamperedSessionIsRejected(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.SignUp("me@example.com", "password")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(svc.sessionPath, []byte("garbage"), 0o600))
	_, err = svc.CurrentUser()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSecretPersistsInStore(t *testing.T) {
	db, err := store.NewMemory()
	require.NoError(t, err)
	defer db.Close()
	path := filepath.Join(t.TempDir(), "session")

	a, err := New(db, Options{SessionPath: path})
	require.NoError(t, err)
	_, err = a.SignUp("me@example.com", "password")
	require.NoError(t, err)

	b, err := New(db, Options{SessionPath: path})
	require.NoError(t, err)
	assert.Equal(t, a.secret, b.secret)
	_, err = b.CurrentUser()
	assert.NoError(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("s3cret")
	tok, err := signToken(secret, "u1", "me@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := parseToken(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "me@example.com", claims.Email)

	_, err = parseToken([]byte("other"), tok)
	assert.Error(t, err)

	expired, err := signToken(secret, "u1", "me@example.com", -time.Minute)
	require.NoError(t, err)
	_, err = parseToken(secret, expired)
	assert.Error(t, err)
}

func TestNewRequiresSessionPath(t *testing.T) {
	db, err := store.NewMemory()
	require.NoError(t, err)
	defer db.Close()
	_, err = New(db, Options{})
	assert.Error(t, err)
}
