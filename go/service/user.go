package service

import (
	"context"
	"errors"
	"regexp"
	"unicode"

	"github.com/rs/xid"

	"github.com/eventro/eventro/go/auth"
	"github.com/eventro/eventro/go/dynamo"
)

type UserService struct {
	store  *dynamo.Store
	tokens *auth.Issuer
}

func NewUserService(store *dynamo.Store, tokens *auth.Issuer) *UserService {
	return &UserService{store: store, tokens: tokens}
}

type SignupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Phone    string `json:"phone_number"`
}

var (
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRe = regexp.MustCompile(`^[0-9]{10}$`)
)

// Signup validates the registration, stores the user with a bcrypt password
// hash and role customer, and returns a signed access token. Email
// uniqueness is enforced by the store's conditional write, not a read.
func (s *UserService) Signup(ctx context.Context, req SignupRequest) (string, error) {
	if err := validateSignup(req); err != nil {
		return "", err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return "", err
	}
	user := dynamo.User{
		UserID:      xid.New().String(),
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: req.Phone,
		Password:    hash,
		Role:        dynamo.RoleCustomer,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, dynamo.ErrAlreadyExists) {
			return "", &AlreadyExistsError{Resource: "user"}
		}
		return "", err
	}
	return s.tokens.Issue(user.UserID, user.Email, string(user.Role))
}

// Login checks credentials and returns a fresh access token. An unregistered
// email is NotFound; a wrong password is IncorrectCredentials; a blocked
// account is refused even with correct credentials.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", notFound("user", email)
	}
	if !auth.VerifyPassword(user.Password, password) {
		return "", ErrIncorrectCredentials
	}
	if user.IsBlocked {
		return "", ErrUserBlocked
	}
	return s.tokens.Issue(user.UserID, user.Email, string(user.Role))
}

func (s *UserService) Profile(ctx context.Context, userID string) (*dynamo.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound("user", userID)
	}
	return user, nil
}

func (s *UserService) ByEmail(ctx context.Context, email string) (*dynamo.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound("user", email)
	}
	return user, nil
}

// SetBlocked toggles the account's blocked flag. Admin-only at the boundary.
func (s *UserService) SetBlocked(ctx context.Context, userID string, blocked bool) error {
	if err := s.store.SetUserBlocked(ctx, userID, blocked); err != nil {
		if errors.Is(err, dynamo.ErrNotExists) {
			return notFound("user", userID)
		}
		return err
	}
	return nil
}

func validateSignup(req SignupRequest) error {
	if !emailRe.MatchString(req.Email) {
		return &ValidationError{Field: "email", Rule: "must be a valid address"}
	}
	if req.Username == "" {
		return &ValidationError{Field: "username", Rule: "must not be empty"}
	}
	if !phoneRe.MatchString(req.Phone) {
		return &ValidationError{Field: "phone_number", Rule: "must be exactly 10 digits"}
	}
	return validatePassword(req.Password)
}

func validatePassword(password string) error {
	if len(password) < 12 {
		return &ValidationError{Field: "password", Rule: "must be at least 12 characters"}
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	switch {
	case !upper:
		return &ValidationError{Field: "password", Rule: "must contain an uppercase letter"}
	case !lower:
		return &ValidationError{Field: "password", Rule: "must contain a lowercase letter"}
	case !digit:
		return &ValidationError{Field: "password", Rule: "must contain a digit"}
	case !special:
		return &ValidationError{Field: "password", Rule: "must contain a special character"}
	}
	return nil
}
