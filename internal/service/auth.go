package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/study_planner/internal/apperr"
	"github.com/Skotchmaster/study_planner/internal/events"
	"github.com/Skotchmaster/study_planner/internal/hash"
	"github.com/Skotchmaster/study_planner/internal/logging"
	"github.com/Skotchmaster/study_planner/internal/models"
	"github.com/Skotchmaster/study_planner/internal/repo"
)

type AuthService struct {
	Users  UserStore
	Tokens TokenIssuer
	Events events.Publisher
}

// Session is what a successful register or login hands back to the transport.
type Session struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type ProfileUpdate struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	NewPassword string `json:"newPassword"`
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*Session, error) {
	l := logging.FromContext(ctx).With("service", "auth_register")

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, apperr.Validation("all fields are required")
	}
	if !emailRe.MatchString(email) {
		return nil, apperr.Validation("invalid email format")
	}
	if len(password) < minPasswordLen {
		return nil, apperr.Validation(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}

	// The unique index is the real guard; this only saves a bcrypt round.
	if _, err := s.Users.FindUserByEmail(ctx, email); err == nil {
		l.Warn("register_failed", "reason", "email_taken")
		return nil, apperr.New(apperr.ErrConflict, "email is already registered")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Name: name, Email: email, PasswordHash: pwHash}
	if err := s.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			l.Warn("register_failed", "reason", "email_taken")
			return nil, apperr.New(apperr.ErrConflict, "email is already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	sess, err := s.session(ctx, user)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUserEvents, user.ID.String(),
		events.NewEvent(events.TypeUserRegistered, user.ID.String(), map[string]any{"email": user.Email}))
	l.Info("register_success", "user_id", user.ID.String())
	return sess, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	l := logging.FromContext(ctx).With("service", "auth_login")

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	user, err := s.Users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			l.Warn("login_failed", "reason", "unknown_email")
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "wrong_password", "user_id", user.ID.String())
		return nil, apperr.ErrInvalidCredentials
	}

	sess, err := s.session(ctx, user)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUserEvents, user.ID.String(),
		events.NewEvent(events.TypeUserLoggedIn, user.ID.String(), nil))
	l.Info("login_success", "user_id", user.ID.String())
	return sess, nil
}

func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.Users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "user not found")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

// UpdateProfile changes only the fields that are set. A password change
// needs the current password.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) error {
	l := logging.FromContext(ctx).With("service", "auth_profile", "user_id", userID.String())

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}

	var upd repo.UserUpdate
	changed := []string{}

	if in.Name != "" {
		name := strings.TrimSpace(in.Name)
		if len([]rune(name)) < minNameLen {
			return apperr.Validation("name is too short")
		}
		upd.Name = &name
		changed = append(changed, "name")
	}

	if email := strings.TrimSpace(in.Email); email != "" && email != user.Email {
		if !emailRe.MatchString(email) {
			return apperr.Validation("invalid email format")
		}
		if _, err := s.Users.FindUserByEmail(ctx, email); err == nil {
			return apperr.New(apperr.ErrConflict, "email is already used by another account")
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("lookup user: %w", err)
		}
		upd.Email = &email
		changed = append(changed, "email")
	}

	if in.NewPassword != "" {
		if in.Password == "" {
			return apperr.Validation("current password is required to change it")
		}
		if len(in.NewPassword) < minPasswordLen {
			return apperr.Validation(fmt.Sprintf("new password must be at least %d characters", minPasswordLen))
		}
		if !hash.CheckPassword(user.PasswordHash, in.Password) {
			l.Warn("profile_update_failed", "reason", "wrong_current_password")
			return apperr.Validation("current password is incorrect")
		}
		pwHash, err := hash.HashPassword(in.NewPassword)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		upd.PasswordHash = &pwHash
		changed = append(changed, "password")
	}

	if upd.Empty() {
		return nil
	}
	if err := s.Users.UpdateUser(ctx, userID, upd); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return apperr.New(apperr.ErrConflict, "email is already used by another account")
		}
		return fmt.Errorf("update user: %w", err)
	}

	publish(ctx, s.Events, events.TopicUserEvents, userID.String(),
		events.NewEvent(events.TypeProfileUpdated, userID.String(), map[string]any{"fields": changed}))
	l.Info("profile_updated", "fields", changed)
	return nil
}

func (s *AuthService) session(ctx context.Context, user *models.User) (*Session, error) {
	token, exp, err := s.Tokens.Issue(user.ID.String(), user.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrConfiguration) {
			logging.Critical(ctx, "token_issue_failed", "reason", "jwt secret is not configured")
		}
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}
