package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/camden-git/curriculumbackend/database"
	"github.com/camden-git/curriculumbackend/models"
	"github.com/camden-git/curriculumbackend/repository"
	"github.com/camden-git/curriculumbackend/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenName labels tokens issued by Login.
const TokenName = "auth-token"

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SetupInput creates the first account of a fresh installation.
type SetupInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8"`
}

// AuthService issues, checks and revokes personal access tokens.
type AuthService struct {
	db       *gorm.DB
	users    repository.UserRepository
	tokens   repository.TokenRepository
	validate *validation.Validator
}

func NewAuthService(db *gorm.DB, v *validation.Validator) *AuthService {
	return &AuthService{
		db:       db,
		users:    repository.NewGormUserRepository(db),
		tokens:   repository.NewGormTokenRepository(db),
		validate: v,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// unknown emails are still compared against a hash so both failure paths cost the same
func compareDummy(password string) {
	dummyHashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("services.auth: failed to build dummy hash: %v", err)
			return
		}
		dummyHash = h
	})
	if dummyHash != nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
	}
}

// Login checks the credentials and returns a new plain text token "{id}|{secret}".
func (s *AuthService) Login(ctx context.Context, in LoginInput) (string, *models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return "", nil, err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, fmt.Errorf("failed to look up user: %w", err)
		}
		compareDummy(in.Password)
		return "", nil, ErrInvalidCredentials
	}
	if !user.CheckPassword(in.Password) {
		return "", nil, ErrInvalidCredentials
	}

	plain, err := s.IssueToken(ctx, user.ID, TokenName)
	if err != nil {
		return "", nil, err
	}
	log.Printf("services.auth: user %d logged in", user.ID)
	return plain, user, nil
}

// IssueToken stores a new token for userID and returns its plain text form.
func (s *AuthService) IssueToken(ctx context.Context, userID uint, name string) (string, error) {
	secret, err := models.NewTokenSecret()
	if err != nil {
		return "", err
	}
	token := &models.PersonalAccessToken{
		UserID:    userID,
		Name:      name,
		TokenHash: models.HashTokenSecret(secret),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return token.PlainText(secret), nil
}

// Logout revokes every token of the user.
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	n, err := s.tokens.DeleteByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke tokens of user %d: %w", userID, err)
	}
	log.Printf("services.auth: revoked %d token(s) of user %d", n, userID)
	return nil
}

// Authenticate resolves a plain text token to its user.
func (s *AuthService) Authenticate(ctx context.Context, plain string) (*models.User, error) {
	id, secret, ok := models.ParsePlainTextToken(plain)
	if !ok {
		return nil, ErrUnauthenticated
	}
	token, err := s.tokens.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(token.TokenHash), []byte(models.HashTokenSecret(secret))) != 1 {
		return nil, ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load token owner: %w", err)
	}
	if err := s.tokens.Touch(ctx, token.ID); err != nil {
		log.Printf("services.auth: Warning: could not touch token %d: %v", token.ID, err)
	}
	return user, nil
}

// Setup creates the first user. It fails with ErrSetupDone once any user exists.
func (s *AuthService) Setup(ctx context.Context, in SetupInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	user := &models.User{Name: in.Name, Email: in.Email}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	err := database.Run(ctx, s.db, func(uow *database.UnitOfWork) error {
		count, err := database.CountRows(ctx, uow.Tx(), "users")
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrSetupDone
		}
		return uow.Tx().WithContext(ctx).Omit("Tokens").Create(user).Error
	})
	if err != nil {
		return nil, err
	}
	log.Printf("services.auth: setup created first user %d (%s)", user.ID, user.Email)
	return user, nil
}
