package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Skotchmaster/blog/internal/domain"
	"github.com/Skotchmaster/blog/internal/events"
	"github.com/Skotchmaster/blog/internal/models"
	"github.com/Skotchmaster/blog/internal/policy"
	"github.com/Skotchmaster/blog/pkg/hash"
	"github.com/Skotchmaster/blog/pkg/logging"
)

const (
	maxUsernameLen = 50
	maxEmailLen    = 100
	DefaultDomain  = "gmail.com"
)

type UserService struct {
	Repo            UserStore
	Events          events.Publisher
	EmailDomain     string
	UniqueUsernames bool
	// AllowSelfRead lets non-admins fetch their own record by id.
	AllowSelfRead   bool
}

type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     models.Role
}

// DeriveEmail builds the default address: first initial plus last name.
// "Jane Doe" becomes "JDoe@gmail.com" and a single word is its own last name.
func DeriveEmail(username, mailDomain string) (string, error) {
	parts := strings.Fields(username)
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if mailDomain == "" {
		mailDomain = DefaultDomain
	}
	first, _ := utf8.DecodeRuneInString(parts[0])
	return string(first) + parts[len(parts)-1] + "@" + mailDomain, nil
}

func validateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return "", fmt.Errorf("%w: username longer than %d characters", domain.ErrValidation, maxUsernameLen)
	}
	return username, nil
}

func validateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if utf8.RuneCountInString(email) > maxEmailLen {
		return "", fmt.Errorf("%w: email longer than %d characters", domain.ErrValidation, maxEmailLen)
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", fmt.Errorf("%w: malformed email", domain.ErrValidation)
	}
	return email, nil
}

func (s *UserService) checkUsernameFree(ctx context.Context, username string, exceptID uint) error {
	if !s.UniqueUsernames {
		return nil
	}
	taken, err := s.Repo.UsernameTaken(ctx, username, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: username already taken", domain.ErrConflict)
	}
	return nil
}

// Create is the admin path for adding accounts.
func (s *UserService) Create(ctx context.Context, caller *models.User, in CreateUserInput) (*models.User, error) {
	if err := policy.RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	u, err := s.create(ctx, in)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.Events, events.Event{Type: events.UserCreated, UserID: u.ID, ActorID: caller.ID, Name: u.Username, Role: u.Role.String()})
	return u, nil
}

// Register is self-service sign-up; the role is always user.
func (s *UserService) Register(ctx context.Context, in CreateUserInput) (*models.User, error) {
	in.Role = models.RoleUser
	u, err := s.create(ctx, in)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.Events, events.Event{Type: events.UserCreated, UserID: u.ID, ActorID: u.ID, Name: u.Username, Role: u.Role.String()})
	return u, nil
}

func (s *UserService) create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.create")

	username, err := validateUsername(in.Username)
	if err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, fmt.Errorf("%w: password is required", domain.ErrValidation)
	}

	email := in.Email
	if strings.TrimSpace(email) == "" {
		if email, err = DeriveEmail(username, s.EmailDomain); err != nil {
			return nil, err
		}
	}
	if email, err = validateEmail(email); err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}

	if err := s.checkUsernameFree(ctx, username, 0); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("create_user_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	u := &models.User{Username: username, Email: email, PasswordHash: &pwHash, Role: role}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	l.Info("user_created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (s *UserService) Get(ctx context.Context, caller *models.User, id uint) (*models.User, error) {
	check := policy.RequireRole(caller, models.RoleAdmin)
	if s.AllowSelfRead {
		check = policy.RequireSelfOrAdmin(caller, id)
	}
	if check != nil {
		return nil, check
	}
	return s.Repo.FindUserByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, caller *models.User, offset, limit int) (Page[models.User], error) {
	scope, err := policy.ListScope(caller)
	if err != nil {
		return Page[models.User]{}, err
	}
	total, items, err := s.Repo.ListUsers(ctx, scope, offset, limit)
	if err != nil {
		return Page[models.User]{}, err
	}
	return Page[models.User]{Total: total, Items: items}, nil
}

// UpdateUsername renames an account. Tokens naming the old username stop resolving.
func (s *UserService) UpdateUsername(ctx context.Context, caller *models.User, id uint, username string) (*models.User, error) {
	if err := policy.RequireSelfOrAdmin(caller, id); err != nil {
		return nil, err
	}
	username, err := validateUsername(username)
	if err != nil {
		return nil, err
	}
	if _, err := s.Repo.FindUserByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.checkUsernameFree(ctx, username, id); err != nil {
		return nil, err
	}

	u, err := s.Repo.UpdateUsername(ctx, id, username)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.Events, events.Event{Type: events.UserUpdated, UserID: u.ID, ActorID: caller.ID, Name: u.Username, Role: u.Role.String()})
	return u, nil
}

func (s *UserService) UpdateRole(ctx context.Context, caller *models.User, id uint, role models.Role) (*models.User, error) {
	if err := policy.RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}

	u, err := s.Repo.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.Events, events.Event{Type: events.UserUpdated, UserID: u.ID, ActorID: caller.ID, Name: u.Username, Role: u.Role.String()})
	return u, nil
}

// EnsureAdmin creates the bootstrap administrator unless an account with that
// username already exists. It reports whether a new account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) (*models.User, bool, error) {
	existing, err := s.Repo.FindUserByUsername(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	u, err := s.create(ctx, CreateUserInput{Username: username, Password: password, Role: models.RoleAdmin})
	if err != nil {
		return nil, false, err
	}
	publish(ctx, s.Events, events.Event{Type: events.UserCreated, UserID: u.ID, Name: u.Username, Role: u.Role.String()})
	return u, true, nil
}
