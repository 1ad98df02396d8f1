package auth

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalens/vitalens/internal/config"
	"github.com/vitalens/vitalens/internal/errors"
	"github.com/vitalens/vitalens/internal/store"
	"go.uber.org/zap"
)

func setupTestService(t *testing.T) *Service {
	cfg := &config.Config{}
	cfg.Storage.InMemory = true
	cfg.Storage.AuditPath = filepath.Join(t.TempDir(), "audit.db")
	cfg.Security.JWTSecret = "test-secret"
	cfg.Security.TokenTTLHours = 1

	st := store.New(cfg, zap.NewNop())
	t.Cleanup(func() { st.Close() })

	return New(st, cfg.Security, zap.NewNop())
}

func TestSignupAndLogin(t *testing.T) {
	svc := setupTestService(t)

	session, err := svc.Signup("doc-1", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "doc-1", session.User.DoctorID)
	assert.Equal(t, "Dr. Emily Carter", session.User.Name)

	logged, err := svc.Login("doc-1", "secret")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, logged.User.ID)
}

func TestSignup_Validation(t *testing.T) {
	svc := setupTestService(t)

	_, err := svc.Signup("   ", "secret")
	assert.Error(t, err)

	_, err = svc.Signup("doc-1", "")
	assert.Error(t, err)
}

func TestSignup_DuplicateDoctorID(t *testing.T) {
	svc := setupTestService(t)

	_, err := svc.Signup("doc-1", "secret")
	require.NoError(t, err)

	_, err = svc.Signup("DOC-1", "other")
	require.Error(t, err)
	assert.Equal(t, "AUTH_001", errors.GetCode(err))
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := setupTestService(t)
	_, err := svc.Signup("doc-1", "secret")
	require.NoError(t, err)

	// Unknown account and wrong password fail identically
	_, wrongPass := svc.Login("doc-1", "wrong")
	_, unknown := svc.Login("nobody", "secret")
	assert.Equal(t, wrongPass, unknown)
	assert.ErrorIs(t, wrongPass, errors.ErrInvalidCredentials)
}

func TestParseToken(t *testing.T) {
	svc := setupTestService(t)

	session, err := svc.Signup("doc-1", "secret")
	require.NoError(t, err)

	claims, err := svc.ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)
	assert.Equal(t, "doc-1", claims.DoctorID)
	assert.Equal(t, "Dr. Emily Carter", claims.Name)
}

func TestParseToken_Rejects(t *testing.T) {
	svc := setupTestService(t)

	_, err := svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, errors.ErrUnauthorized)

	// Token signed with a different secret
	session, err := svc.Signup("doc-2", "secret")
	require.NoError(t, err)

	tampered := New(svc.store, config.SecurityConfig{JWTSecret: "different"}, zap.NewNop())
	claims, err := tampered.ParseToken(session.Token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, errors.ErrUnauthorized)
}
