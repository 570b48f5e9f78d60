package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"reviewhub/internal/domain"
)

const bcryptCost = 10

type Registration struct {
	Name         string
	Email        string
	Password     string
	ProfileImage string
}

// ProfileUpdate overwrites only non-blank fields.
type ProfileUpdate struct {
	Name         string
	Email        string
	Password     string
	ProfileImage string
}

// Session is a user with a freshly issued bearer token.
type Session struct {
	User  domain.User
	Token string
}

type AccountService struct {
	users  domain.UserRepository
	tokens domain.TokenIssuer
}

func NewAccountService(users domain.UserRepository, tokens domain.TokenIssuer) *AccountService {
	return &AccountService{users: users, tokens: tokens}
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

func (s *AccountService) Register(ctx context.Context, in Registration) (Session, error) {
	name, err := required("name", in.Name)
	if err != nil {
		return Session{}, err
	}
	email := normalizeEmail(in.Email)
	if email == "" {
		return Session{}, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if in.Password == "" {
		return Session{}, fmt.Errorf("%w: password is required", domain.ErrValidation)
	}
	switch _, err := s.users.FindUserByEmail(ctx, email); {
	case err == nil:
		return Session{}, fmt.Errorf("%w: email already registered", domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return Session{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return Session{}, err
	}
	u, err := s.users.CreateUser(ctx, domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		ProfileImage: orDefault(in.ProfileImage, domain.DefaultProfileImage),
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return Session{}, fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
		return Session{}, err
	}
	return s.session(u)
}

func (s *AccountService) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Session{}, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
		}
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return Session{}, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	}
	return s.session(u)
}

// Authenticate resolves a bearer token to its user.
func (s *AccountService) Authenticate(ctx context.Context, token string) (domain.User, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return domain.User{}, err
		}
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, fmt.Errorf("%w: user not found", domain.ErrUnauthorized)
		}
		return domain.User{}, err
	}
	return u, nil
}

func (s *AccountService) Me(ctx context.Context, userID int64) (domain.User, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return domain.User{}, notFound("user", err)
	}
	return u, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID int64, in ProfileUpdate) (Session, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return Session{}, notFound("user", err)
	}
	if v := strings.TrimSpace(in.Name); v != "" {
		u.Name = v
	}
	if v := normalizeEmail(in.Email); v != "" && v != u.Email {
		switch other, err := s.users.FindUserByEmail(ctx, v); {
		case err == nil && other.ID != u.ID:
			return Session{}, fmt.Errorf("%w: email already registered", domain.ErrConflict)
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return Session{}, err
		}
		u.Email = v
	}
	if v := strings.TrimSpace(in.ProfileImage); v != "" {
		u.ProfileImage = v
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
		if err != nil {
			return Session{}, err
		}
		u.PasswordHash = string(hash)
	}
	if u, err = s.users.UpdateUser(ctx, u); err != nil {
		return Session{}, err
	}
	return s.session(u)
}

func (s *AccountService) session(u domain.User) (Session, error) {
	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: tok}, nil
}
