package app_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewhub/internal/adapters/token"
	"reviewhub/internal/app"
	"reviewhub/internal/domain"
)

func newAccounts(t *testing.T) (*app.AccountService, *world) {
	t.Helper()
	w := newWorld(t)
	tokens, err := token.New("test-secret", time.Hour)
	require.NoError(t, err)
	return app.NewAccountService(w.store, tokens), w
}

func TestRegisterAndLogin(t *testing.T) {
	svc, w := newAccounts(t)

	s, err := svc.Register(w.ctx, app.Registration{Name: " Ada ", Email: " Ada@Example.COM ", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", s.User.Name)
	assert.Equal(t, "ada@example.com", s.User.Email)
	assert.Equal(t, domain.DefaultProfileImage, s.User.ProfileImage)
	assert.NotEqual(t, "hunter22", s.User.PasswordHash)
	assert.NotEmpty(t, s.Token)

	u, err := svc.Authenticate(w.ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, u.ID)

	_, err = svc.Register(w.ctx, app.Registration{Name: "Ada", Email: "ada@example.com", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	l, err := svc.Login(w.ctx, "ADA@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, l.User.ID)

	_, err = svc.Login(w.ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.Login(w.ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRegister_Validation(t *testing.T) {
	svc, w := newAccounts(t)
	for _, in := range []app.Registration{
		{Email: "a@b.c", Password: "pw"},
		{Name: "A", Password: "pw"},
		{Name: "A", Email: "a@b.c"},
	} {
		_, err := svc.Register(w.ctx, in)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	svc, w := newAccounts(t)

	_, err := svc.Authenticate(w.ctx, "not-a-token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	other, err := token.New("other-secret", time.Hour)
	require.NoError(t, err)
	forged, err := other.Issue(1)
	require.NoError(t, err)
	_, err = svc.Authenticate(w.ctx, forged)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// valid signature, deleted user
	s, err := svc.Register(w.ctx, app.Registration{Name: "Gone", Email: "gone@example.com", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, w.store.DeleteUser(w.ctx, s.User.ID))
	_, err = svc.Authenticate(w.ctx, s.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	svc, w := newAccounts(t)
	a, err := svc.Register(w.ctx, app.Registration{Name: "Ada", Email: "ada@example.com", Password: "old-pass"})
	require.NoError(t, err)
	_, err = svc.Register(w.ctx, app.Registration{Name: "Bob", Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)

	s, err := svc.UpdateProfile(w.ctx, a.User.ID, app.ProfileUpdate{Name: "Ada L", Password: "new-pass", ProfileImage: "https://img.test/a.png"})
	require.NoError(t, err)
	assert.Equal(t, "Ada L", s.User.Name)
	assert.Equal(t, "ada@example.com", s.User.Email)
	assert.Equal(t, "https://img.test/a.png", s.User.ProfileImage)
	assert.NotEmpty(t, s.Token)

	_, err = svc.Login(w.ctx, "ada@example.com", "old-pass")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.Login(w.ctx, "ada@example.com", "new-pass")
	assert.NoError(t, err)

	_, err = svc.UpdateProfile(w.ctx, a.User.ID, app.ProfileUpdate{Email: "BOB@example.com"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	me, err := svc.Me(w.ctx, a.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada L", me.Name)
	_, err = svc.Me(w.ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
