package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/numtrack/numtrack/internal/models"
	"github.com/numtrack/numtrack/pkg/crypto"
	"github.com/numtrack/numtrack/pkg/logger"
	"github.com/numtrack/numtrack/pkg/middleware"
)

// SessionCache is the fast path for idle-timeout checks; satisfied by
// cache.RedisCache. A nil cache falls back to the session store alone.
type SessionCache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// AuthService handles registration, login and server-side session
// expiry. The session document's LastSeenAt is the source of truth; the
// cache key mirrors it with a TTL so hot-path requests skip the store.
type AuthService struct {
	users       UserStore
	activities  ActivityStore
	cache       SessionCache
	auth        *middleware.AuthMiddleware
	metrics     *MetricsCollector
	logger      logger.Logger
	idleTimeout time.Duration
	tokenExpiry time.Duration
	now         func() time.Time
}

func NewAuthService(
	users UserStore,
	activities ActivityStore,
	sessionCache SessionCache,
	auth *middleware.AuthMiddleware,
	metrics *MetricsCollector,
	log logger.Logger,
	idleTimeout time.Duration,
	tokenExpiry time.Duration,
) *AuthService {
	if idleTimeout <= 0 {
		idleTimeout = 10 * time.Minute
	}
	if tokenExpiry <= 0 {
		tokenExpiry = 24 * time.Hour
	}
	return &AuthService{
		users:       users,
		activities:  activities,
		cache:       sessionCache,
		auth:        auth,
		metrics:     metrics,
		logger:      log,
		idleTimeout: idleTimeout,
		tokenExpiry: tokenExpiry,
		now:         time.Now,
	}
}

// Register creates a user. The very first account becomes the admin;
// later accounts are employees. A requested role is honored only when
// allowRole is set, which callers grant solely to the admin user-creation
// endpoint; self-registration can never pick its own role.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest, allowRole bool) (*models.User, error) {
	existing, err := s.users.FindUserByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Error("Failed to check existing user", logger.Field{Key: "error", Value: err.Error()})
		return nil, errors.New("failed to check existing user")
	}
	if existing != nil {
		return nil, models.ErrEmailInUse
	}

	count, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, errors.New("failed to count users")
	}

	role := models.RoleEmployee
	if count == 0 {
		role = models.RoleAdmin
	} else if allowRole && req.Role != "" {
		switch models.UserRole(req.Role) {
		case models.RoleAdmin, models.RoleEmployee:
			role = models.UserRole(req.Role)
		default:
			return nil, models.ErrInvalidRole
		}
	}

	hashed, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &models.User{
		Email:       req.Email,
		Password:    hashed,
		DisplayName: req.DisplayName,
		Role:        role,
		IsActive:    true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		s.logger.Error("Failed to create user", logger.Field{Key: "error", Value: err.Error()})
		return nil, errors.New("failed to create user")
	}

	s.recordActivity(ctx, user.Email, "Register", fmt.Sprintf("Registered as %s", role))

	return user, nil
}

// Login verifies credentials, opens a session and returns the token pair.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	user, err := s.users.FindUserByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Error("Failed to look up user", logger.Field{Key: "error", Value: err.Error()})
		return nil, errors.New("failed to look up user")
	}
	if user == nil || !user.IsActive {
		return nil, models.ErrInvalidCredential
	}

	if !crypto.CheckPassword(req.Password, user.Password) {
		return nil, models.ErrInvalidCredential
	}

	token, err := s.auth.GenerateToken(user.ID.Hex(), user.Email, string(user.Role))
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	now := s.now()
	session := &models.Session{
		UserID:       user.ID,
		Token:        token,
		RefreshToken: uuid.NewString(),
		LastSeenAt:   now,
		ExpiresAt:    now.Add(s.tokenExpiry),
	}
	if err := s.users.CreateSession(ctx, session); err != nil {
		return nil, errors.New("failed to create session")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, sessionKey(token), "1", s.idleTimeout); err != nil {
			s.logger.Warn("Failed to cache session", logger.Field{Key: "error", Value: err.Error()})
		}
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("Failed to update last login", logger.Field{Key: "error", Value: err.Error()})
	}

	s.recordActivity(ctx, user.Email, "Login", "Signed in")
	s.metrics.IncrementLogin()

	return &models.TokenResponse{
		AccessToken:  token,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    int(s.tokenExpiry.Seconds()),
		TokenType:    "Bearer",
		User:         user,
	}, nil
}

// ValidateSession checks the idle timeout and advances LastSeenAt. An
// idle session is expired exactly once: the session record is removed,
// one expiry activity is logged and ErrSessionExpired comes back.
func (s *AuthService) ValidateSession(ctx context.Context, token string) error {
	if s.cache != nil {
		alive, err := s.cache.Exists(ctx, sessionKey(token))
		if err == nil && alive {
			if err := s.cache.Expire(ctx, sessionKey(token), s.idleTimeout); err != nil {
				s.logger.Warn("Failed to refresh session TTL", logger.Field{Key: "error", Value: err.Error()})
			}
			if err := s.users.TouchSession(ctx, token); err != nil {
				s.logger.Warn("Failed to touch session", logger.Field{Key: "error", Value: err.Error()})
			}
			return nil
		}
	}

	session, err := s.users.FindSessionByToken(ctx, token)
	if err != nil {
		return errors.New("failed to load session")
	}
	if session == nil {
		return models.ErrSessionExpired
	}

	now := s.now()
	if now.Sub(session.LastSeenAt) > s.idleTimeout || now.After(session.ExpiresAt) {
		s.expireSession(ctx, session)
		return models.ErrSessionExpired
	}

	if err := s.users.TouchSession(ctx, token); err != nil {
		s.logger.Warn("Failed to touch session", logger.Field{Key: "error", Value: err.Error()})
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, sessionKey(token), "1", s.idleTimeout); err != nil {
			s.logger.Warn("Failed to cache session", logger.Field{Key: "error", Value: err.Error()})
		}
	}

	return nil
}

func (s *AuthService) expireSession(ctx context.Context, session *models.Session) {
	if err := s.users.DeleteSessionByToken(ctx, session.Token); err != nil {
		s.logger.Warn("Failed to delete expired session", logger.Field{Key: "error", Value: err.Error()})
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, sessionKey(session.Token)); err != nil {
			s.logger.Warn("Failed to drop session cache key", logger.Field{Key: "error", Value: err.Error()})
		}
	}

	actor := session.UserID.Hex()
	if user, err := s.users.FindUserByID(ctx, session.UserID); err == nil && user != nil {
		actor = user.Email
	}
	s.recordActivity(ctx, actor, "Session Expired", "Signed out after inactivity")
	s.metrics.IncrementSessionExpiry()
}

// Logout closes the session. Unknown tokens are treated as already
// logged out.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.users.DeleteSessionByToken(ctx, token); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, sessionKey(token)); err != nil {
			s.logger.Warn("Failed to drop session cache key", logger.Field{Key: "error", Value: err.Error()})
		}
	}
	return nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, req *models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, errors.New("failed to load user")
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}

	if err := s.users.UpdateProfile(ctx, userID, req.DisplayName); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, user.Email, "Update Profile", "Changed display name")

	return s.users.FindUserByID(ctx, userID)
}

func (s *AuthService) GetUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return s.users.FindUserByID(ctx, userID)
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.FindAllUsers(ctx)
}

func (s *AuthService) recordActivity(ctx context.Context, actor, action, description string) {
	activity := &models.Activity{
		Actor:       actor,
		Action:      action,
		Description: description,
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		s.logger.Error("Failed to record activity", logger.Field{Key: "error", Value: err.Error()})
	}
}

func sessionKey(token string) string {
	return "session:" + token
}
