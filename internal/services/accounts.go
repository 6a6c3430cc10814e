package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"hostel-complaints-backend-go/internal/models"
	"hostel-complaints-backend-go/internal/store"

	"github.com/google/uuid"
)

type AccountService struct {
	Users                 store.UserStore
	Tokens                TokenService
	AllowMaintainerSignup bool
}

type Registration struct {
	Username   string `validate:"required,min=3,max=15"`
	Email      string `validate:"required,email"`
	Password   string `validate:"required,min=8,max=20,strongpassword"`
	Role       string `validate:"omitempty,oneof=student maintainer"`
	RoomNumber string `validate:"max=20"`
}

// Session is what register and login hand back to the client.
type Session struct {
	Token     string
	ExpiresAt int64
	User      *models.User
}

func (a *AccountService) Register(ctx context.Context, req Registration) (*Session, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.RoomNumber = strings.TrimSpace(req.RoomNumber)
	req.Role = strings.TrimSpace(req.Role)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	role := models.RoleStudent
	if req.Role != "" {
		role, _ = models.ParseRole(req.Role)
	}
	if role == models.RoleMaintainer && !a.AllowMaintainerSignup {
		return nil, ErrForbidden("Maintainer accounts are created by an administrator")
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, ErrInternal(err, "hash password")
	}
	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.RoomNumber != "" {
		room := req.RoomNumber
		user.RoomNumber = &room
	}
	if err := a.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrConflict("Username or email already exists")
		}
		return nil, ErrInternal(err, "create user")
	}
	return a.session(user)
}

func (a *AccountService) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput("Username and password are required")
	}
	user, err := a.Users.FindUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthenticated("", "Invalid username or password")
	}
	if err != nil {
		return nil, ErrInternal(err, "find user")
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrUnauthenticated("", "Invalid username or password")
	}
	return a.session(user)
}

func (a *AccountService) Me(ctx context.Context, actor Identity) (*models.User, error) {
	user, err := a.Users.FindUserByID(ctx, actor.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthenticated(ReasonUserNotFound, "Invalid or expired token")
	}
	if err != nil {
		return nil, ErrInternal(err, "find user")
	}
	return user, nil
}

func (a *AccountService) session(user *models.User) (*Session, error) {
	token, exp, err := a.Tokens.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, ErrInternal(err, "issue token")
	}
	return &Session{Token: token, ExpiresAt: exp, User: user}, nil
}
