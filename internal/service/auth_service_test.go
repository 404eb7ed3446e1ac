package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numtrack/numtrack/internal/models"
	"github.com/numtrack/numtrack/pkg/middleware"
)

func newAuthFixture(idleTimeout time.Duration) (*AuthService, *fakeUserStore, *fakeActivityStore) {
	users := newFakeUserStore()
	activities := newFakeActivityStore()
	auth := middleware.NewAuthMiddleware("test-secret", time.Hour)
	svc := NewAuthService(users, activities, nil, auth, nil, nopLogger{}, idleTimeout, time.Hour)
	return svc, users, activities
}

func TestFirstRegisteredUserBecomesAdmin(t *testing.T) {
	svc, _, _ := newAuthFixture(10 * time.Minute)
	ctx := context.Background()

	first, err := svc.Register(ctx, &models.RegisterRequest{
		Email: "owner@example.com", Password: "secret123", DisplayName: "Owner",
	}, false)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, first.Role)

	second, err := svc.Register(ctx, &models.RegisterRequest{
		Email: "staff@example.com", Password: "secret123", DisplayName: "Staff",
	}, false)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEmployee, second.Role)
}

func TestSelfRegistrationCannotPickRole(t *testing.T) {
	svc, _, _ := newAuthFixture(10 * time.Minute)
	ctx := context.Background()

	_, err := svc.Register(ctx, &models.RegisterRequest{
		Email: "owner@example.com", Password: "secret123",
	}, false)
	require.NoError(t, err)

	// A self-registration asking for admin gets employee.
	user, err := svc.Register(ctx, &models.RegisterRequest{
		Email: "sneaky@example.com", Password: "secret123", Role: "admin",
	}, false)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEmployee, user.Role)
}

func TestAdminCreatedUserGetsRequestedRole(t *testing.T) {
	svc, _, _ := newAuthFixture(10 * time.Minute)
	ctx := context.Background()

	_, err := svc.Register(ctx, &models.RegisterRequest{
		Email: "owner@example.com", Password: "secret123",
	}, false)
	require.NoError(t, err)

	user, err := svc.Register(ctx, &models.RegisterRequest{
		Email: "deputy@example.com", Password: "secret123", Role: "admin",
	}, true)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(10 * time.Minute)
	ctx := context.Background()

	_, err := svc.Register(ctx, &models.RegisterRequest{
		Email: "owner@example.com", Password: "secret123",
	}, false)
	require.NoError(t, err)

	_, err = svc.Register(ctx, &models.RegisterRequest{
		Email: "owner@example.com", Password: "other456",
	}, false)
	assert.ErrorIs(t, err, models.ErrEmailInUse)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, _, _ := newAuthFixture(10 * time.Minute)
	ctx := context.Background()

	_, err := svc.Register(ctx, &models.RegisterRequest{
		Email: "owner@example.com", Password: "secret123",
	}, false)
	require.NoError(t, err)

	_, err = svc.Register(ctx, &models.RegisterRequest{
		Email: "x@example.com", Password: "secret123", Role: "superuser",
	}, true)
	assert.ErrorIs(t, err, models.ErrInvalidRole)
}

func TestLoginAndValidateSession(t *testing.T) {
	svc, users, _ := newAuthFixture(10 * time.Minute)
	ctx := context.Background()

	_, err := svc.Register(ctx, &models.RegisterRequest{
		Email: "owner@example.com", Password: "secret123",
	}, false)
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &models.LoginRequest{
		Email: "owner@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)

	require.NoError(t, svc.ValidateSession(ctx, resp.AccessToken))

	session, err := users.FindSessionByToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, session)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(10 * time.Minute)
	ctx := context.Background()

	_, err := svc.Register(ctx, &models.RegisterRequest{
		Email: "owner@example.com", Password: "secret123",
	}, false)
	require.NoError(t, err)

	_, err = svc.Login(ctx, &models.LoginRequest{
		Email: "owner@example.com", Password: "wrong-pass",
	})
	assert.ErrorIs(t, err, models.ErrInvalidCredential)

	_, err = svc.Login(ctx, &models.LoginRequest{
		Email: "ghost@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, models.ErrInvalidCredential)
}

func TestIdleSessionExpiresExactlyOnce(t *testing.T) {
	svc, users, activities := newAuthFixture(10 * time.Minute)
	ctx := context.Background()

	_, err := svc.Register(ctx, &models.RegisterRequest{
		Email: "owner@example.com", Password: "secret123",
	}, false)
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &models.LoginRequest{
		Email: "owner@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	// Jump past the idle timeout.
	svc.now = func() time.Time { return time.Now().Add(11 * time.Minute) }

	err = svc.ValidateSession(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, models.ErrSessionExpired)

	session, err := users.FindSessionByToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Nil(t, session, "expired session is removed")

	expiries := 0
	for _, entry := range activities.all() {
		if entry.Action == "Session Expired" {
			expiries++
		}
	}
	assert.Equal(t, 1, expiries)

	// A second check of the same token finds no session and logs nothing new.
	err = svc.ValidateSession(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, models.ErrSessionExpired)

	expiries = 0
	for _, entry := range activities.all() {
		if entry.Action == "Session Expired" {
			expiries++
		}
	}
	assert.Equal(t, 1, expiries, "expiry is logged exactly once")
}

func TestActivityWithinTimeoutKeepsSessionAlive(t *testing.T) {
	svc, users, _ := newAuthFixture(10 * time.Minute)
	ctx := context.Background()

	_, err := svc.Register(ctx, &models.RegisterRequest{
		Email: "owner@example.com", Password: "secret123",
	}, false)
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &models.LoginRequest{
		Email: "owner@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	// Touch at +9m, then check at +18m: each touch restarts the clock.
	base := time.Now()
	at := func(d time.Duration) {
		svc.now = func() time.Time { return base.Add(d) }
		users.clock = svc.now
	}

	at(9 * time.Minute)
	require.NoError(t, svc.ValidateSession(ctx, resp.AccessToken))

	at(18 * time.Minute)
	require.NoError(t, svc.ValidateSession(ctx, resp.AccessToken))
}

func TestLogoutRemovesSession(t *testing.T) {
	svc, users, _ := newAuthFixture(10 * time.Minute)
	ctx := context.Background()

	_, err := svc.Register(ctx, &models.RegisterRequest{
		Email: "owner@example.com", Password: "secret123",
	}, false)
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &models.LoginRequest{
		Email: "owner@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.AccessToken))

	session, err := users.FindSessionByToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Nil(t, session)

	assert.ErrorIs(t, svc.ValidateSession(ctx, resp.AccessToken), models.ErrSessionExpired)
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newAuthFixture(10 * time.Minute)
	ctx := context.Background()

	user, err := svc.Register(ctx, &models.RegisterRequest{
		Email: "owner@example.com", Password: "secret123", DisplayName: "Old Name",
	}, false)
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, user.ID, &models.UpdateProfileRequest{
		DisplayName: "New Name",
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.DisplayName)
	assert.Equal(t, user.Email, updated.Email)
}
