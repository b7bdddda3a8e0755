package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/corefellowship/backend/internal/store"
	"github.com/corefellowship/backend/internal/token"
	"github.com/corefellowship/backend/types"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt cost for password hashing. Deliberately above the library default.
const passwordHashCost = 12

// Authentication failure kinds, translated to HTTP statuses at the handler
// boundary. Unknown email and wrong password share ErrInvalidCredentials so
// responses cannot be used to enumerate accounts.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrAdminTokenInvalid  = errors.New("invalid admin registration token")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrAccountLocked      = errors.New("account is locked")
)

// UserRepository defines the credential-store operations the issuer needs.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// AuthService verifies credentials against the credential store and mints
// bearer tokens for authenticated users.
type AuthService struct {
	repo       UserRepository
	issuer     *token.Issuer
	adminToken string
	now        func() time.Time
}

func NewAuthService(repo UserRepository, issuer *token.Issuer, adminRegistrationToken string) *AuthService {
	return &AuthService{
		repo:       repo,
		issuer:     issuer,
		adminToken: adminRegistrationToken,
		now:        time.Now,
	}
}

// RegisterParams is the input to Register. AdminToken, when present, must
// match the configured registration secret for the account to get ADMIN.
type RegisterParams struct {
	Email       string
	Password    string
	UserType    types.UserType
	FullName    string
	CompanyName string
	AdminToken  string
}

func (s *AuthService) Register(ctx context.Context, p RegisterParams) (types.User, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return types.User{}, err
	}
	if exists {
		return types.User{}, ErrEmailTaken
	}

	role := types.RoleUser
	if p.AdminToken != "" {
		if s.adminToken == "" || p.AdminToken != s.adminToken {
			return types.User{}, ErrAdminTokenInvalid
		}
		role = types.RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), passwordHashCost)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		ID:             uuid.NewString(),
		Email:          email,
		PasswordHash:   string(hash),
		Role:           role,
		UserType:       p.UserType,
		FullName:       p.FullName,
		CompanyName:    p.CompanyName,
		AccountEnabled: true,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, ErrEmailTaken
		}
		return types.User{}, err
	}
	return user, nil
}

// LoginResult carries everything the login response needs.
type LoginResult struct {
	Token     string
	TokenType string
	ExpiresIn int
	User      types.User
}

func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	if !user.AccountEnabled {
		return LoginResult{}, ErrAccountDisabled
	}
	if user.AccountLocked {
		return LoginResult{}, ErrAccountLocked
	}

	now := s.now()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return LoginResult{}, err
	}
	user.LastLoginAt = &now

	signed, err := s.issuer.Mint(user)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		Token:     signed,
		TokenType: "Bearer",
		ExpiresIn: int(s.issuer.TTL().Seconds()),
		User:      user,
	}, nil
}
