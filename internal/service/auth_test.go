package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/study_planner/internal/apperr"
	"github.com/Skotchmaster/study_planner/internal/events"
	"github.com/Skotchmaster/study_planner/internal/hash"
	"github.com/Skotchmaster/study_planner/internal/repo/repotest"
	"github.com/Skotchmaster/study_planner/internal/tokens"
)

func newAuthService(t *testing.T) (*AuthService, *tokens.Service, *events.Recorder) {
	t.Helper()
	tk := tokens.NewService([]byte("test-secret"))
	rec := &events.Recorder{}
	return &AuthService{Users: repotest.New(t), Tokens: tk, Events: rec}, tk, rec
}

func TestRegister_IssuesVerifiableToken(t *testing.T) {
	t.Parallel()

	svc, tk, rec := newAuthService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, " Ana ", "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", sess.User.Name)
	assert.NotEqual(t, "secret1", sess.User.PasswordHash)

	claims, err := tk.Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID.String(), claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, []string{events.TypeUserRegistered}, rec.Types())
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name, uname, email, password string
	}{
		{"missing name", "", "a@b.co", "secret1"},
		{"missing email", "Ana", "", "secret1"},
		{"missing password", "Ana", "a@b.co", ""},
		{"bad email", "Ana", "not-an-email", "secret1"},
		{"email with space", "Ana", "a b@c.co", "secret1"},
		{"short password", "Ana", "a@b.co", "12345"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc, _, rec := newAuthService(t)

			_, err := svc.Register(context.Background(), tc.uname, tc.email, tc.password)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrValidation)
			assert.Empty(t, rec.Events)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ana", "ana@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other", "ana@example.com", "secret2")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestRegister_NoSecret(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAuthService(t)
	svc.Tokens = tokens.NewService(nil)

	_, err := svc.Register(context.Background(), "Ana", "ana@example.com", "secret1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrConfiguration)
}

func TestLogin_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	t.Parallel()

	svc, tk, rec := newAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "Ana", "ana@example.com", "secret1")
	require.NoError(t, err)

	sess, err := svc.Login(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	claims, err := tk.Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID.String(), claims.UserID)

	_, wrongPw := svc.Login(ctx, "ana@example.com", "nope-nope")
	_, unknown := svc.Login(ctx, "bob@example.com", "secret1")
	require.Error(t, wrongPw)
	require.Error(t, unknown)
	assert.ErrorIs(t, wrongPw, apperr.ErrInvalidCredentials)
	assert.Equal(t, wrongPw.Error(), unknown.Error())

	assert.Equal(t, []string{events.TypeUserRegistered, events.TypeUserLoggedIn}, rec.Types())
}

func TestLogin_MissingFields(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAuthService(t)
	_, err := svc.Login(context.Background(), "", "x")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestProfile_NotFound(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAuthService(t)
	_, err := svc.Profile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	svc, _, rec := newAuthService(t)
	ctx := context.Background()

	ana, err := svc.Register(ctx, "Ana", "ana@example.com", "secret1")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "Bob", "bob@example.com", "secret1")
	require.NoError(t, err)
	id := ana.User.ID

	assert.ErrorIs(t, svc.UpdateProfile(ctx, id, ProfileUpdate{Name: " A "}), apperr.ErrValidation)
	assert.ErrorIs(t, svc.UpdateProfile(ctx, id, ProfileUpdate{Email: "broken"}), apperr.ErrValidation)
	assert.ErrorIs(t, svc.UpdateProfile(ctx, id, ProfileUpdate{Email: "bob@example.com"}), apperr.ErrConflict)
	assert.ErrorIs(t, svc.UpdateProfile(ctx, id, ProfileUpdate{NewPassword: "newsecret"}), apperr.ErrValidation)
	assert.ErrorIs(t, svc.UpdateProfile(ctx, id, ProfileUpdate{Password: "secret1", NewPassword: "123"}), apperr.ErrValidation)
	assert.ErrorIs(t, svc.UpdateProfile(ctx, id, ProfileUpdate{Password: "wrong", NewPassword: "newsecret"}), apperr.ErrValidation)

	// unchanged email is not a conflict with itself
	require.NoError(t, svc.UpdateProfile(ctx, id, ProfileUpdate{Email: "ana@example.com"}))

	require.NoError(t, svc.UpdateProfile(ctx, id, ProfileUpdate{
		Name:        "  Ana Maria ",
		Email:       "ana.maria@example.com",
		Password:    "secret1",
		NewPassword: "newsecret",
	}))

	user, err := svc.Profile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", user.Name)
	assert.Equal(t, "ana.maria@example.com", user.Email)
	assert.True(t, hash.CheckPassword(user.PasswordHash, "newsecret"))

	_, err = svc.Login(ctx, "ana.maria@example.com", "newsecret")
	require.NoError(t, err)

	assert.Contains(t, rec.Types(), events.TypeProfileUpdated)
}
