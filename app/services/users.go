package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

// UserInput is the writable shape of a user. The flags are honoured only
// for staff callers.
type UserInput struct {
	Username    *string `json:"username"     validate:"username,max=150"`
	Password    *string `json:"password"     validate:"max=128"`
	Email       *string `json:"email"        validate:"nullable,email,max=254"`
	FirstName   *string `json:"first_name"   validate:"max=150"`
	LastName    *string `json:"last_name"    validate:"max=150"`
	IsStaff     *bool   `json:"is_staff"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

// UserService manages accounts and issues tokens.
type UserService struct {
	repo *repositories.UserRepository
	now  func() time.Time
}

func NewUserService(repos *repositories.Set) *UserService {
	return &UserService{repo: repos.Users, now: time.Now}
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.repo.Find(ctx, id)
}

func (s *UserService) List(ctx context.Context, page, size int) (orm.Page[models.User], error) {
	return s.repo.List(ctx, page, size)
}

func (s *UserService) Create(ctx context.Context, actor auth.Identity, in UserInput) (*models.User, error) {
	u := &models.User{IsActive: true, DateJoined: s.now()}
	if err := s.apply(ctx, actor, u, in, false); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, duplicateUsername(err)
	}
	return u, nil
}

func (s *UserService) Update(ctx context.Context, actor auth.Identity, id uint, in UserInput, partial bool) (*models.User, error) {
	u, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, actor, u, in, partial); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, duplicateUsername(err)
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// CreateSuperuser creates an active staff superuser.
func (s *UserService) CreateSuperuser(ctx context.Context, username, password, email string) (*models.User, error) {
	yes := true
	return s.Create(ctx, auth.Identity{IsStaff: true}, UserInput{
		Username:    &username,
		Password:    &password,
		Email:       &email,
		IsStaff:     &yes,
		IsSuperuser: &yes,
	})
}

// IssueToken checks the credentials of an active user, stamps last_login
// and returns a bearer token.
func (s *UserService) IssueToken(ctx context.Context, username, password string) (string, time.Time, *models.User, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", time.Time{}, nil, ErrInvalidCredentials
		}
		return "", time.Time{}, nil, err
	}
	if !u.IsActive || !auth.CheckPassword(u.Password, password) {
		return "", time.Time{}, nil, ErrInvalidCredentials
	}

	token, exp, err := auth.GenerateToken(u.ID, u.IsStaff)
	if err != nil {
		return "", time.Time{}, nil, err
	}

	now := s.now()
	if err := s.repo.TouchLogin(ctx, u.ID, now); err != nil {
		return "", time.Time{}, nil, err
	}
	u.LastLogin = &now
	return token, exp, u, nil
}

// Active resolves a token subject to an active user.
func (s *UserService) Active(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) apply(ctx context.Context, actor auth.Identity, u *models.User, in UserInput, partial bool) error {
	c := checks{}
	c.text("username", in.Username, partial)
	c.text("password", in.Password, partial)
	if err := c.err(); err != nil {
		return err
	}

	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		taken, err := s.repo.UsernameTaken(ctx, name, u.ID)
		if err != nil {
			return err
		}
		if taken {
			return Invalid("username", "A user with that username already exists.")
		}
		u.Username = name
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return err
		}
		u.Password = hash
	}
	assign(&u.Email, in.Email, partial)
	assign(&u.FirstName, in.FirstName, partial)
	assign(&u.LastName, in.LastName, partial)

	if actor.IsStaff {
		if in.IsStaff != nil {
			u.IsStaff = *in.IsStaff
		}
		if in.IsActive != nil {
			u.IsActive = *in.IsActive
		}
		if in.IsSuperuser != nil {
			u.IsSuperuser = *in.IsSuperuser
		}
	}
	return nil
}

// assign copies v onto dst, clearing dst on a full update without v.
func assign(dst *string, v *string, partial bool) {
	switch {
	case v != nil:
		*dst = *v
	case !partial:
		*dst = ""
	}
}

func duplicateUsername(err error) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return Invalid("username", "A user with that username already exists.")
	}
	return err
}
