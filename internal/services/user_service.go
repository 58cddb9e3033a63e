package services

import (
	"context"
	"errors"
	"strings"

	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

// Credentials is the body of register, login and create-admin requests.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type UserService interface {
	// Register creates a customer account.
	Register(ctx context.Context, in Credentials) (*models.User, error)
	// Authenticate checks email and password and returns the matching user.
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListAdmins(ctx context.Context) ([]models.User, error)
	CreateAdmin(ctx context.Context, in Credentials) (*models.User, error)
}

type userService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

func (s *userService) Register(ctx context.Context, in Credentials) (*models.User, error) {
	return s.create(ctx, in, models.RoleCustomer)
}

func (s *userService) CreateAdmin(ctx context.Context, in Credentials) (*models.User, error) {
	return s.create(ctx, in, models.RoleAdmin)
}

func (s *userService) create(ctx context.Context, in Credentials, role string) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}
	if !strings.Contains(email, "@") {
		return nil, models.NewValidationError("Invalid email", "email")
	}
	if len(in.Password) < minPasswordLength {
		return nil, models.NewValidationError("Password must be at least 6 characters", "password")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, models.NewInternalError("Database error", err)
	}
	if count > 0 {
		return nil, models.NewConflictError("That email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError("Password hashing failed", err)
	}

	user := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflictError("That email is already registered")
		}
		return nil, models.NewInternalError("Failed to create user", err)
	}
	log.WithFields(logrus.Fields{"user_id": user.ID, "role": role}).Info("User created")
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if models.IsCode(err, models.ErrNotFound) {
			return nil, &models.AppError{Code: models.ErrUnauthorized, Message: "Invalid credentials"}
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, &models.AppError{Code: models.ErrUnauthorized, Message: "Invalid credentials"}
	}
	return user, nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error; err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Take(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	return &user, nil
}

func (s *userService) ListAdmins(ctx context.Context) ([]models.User, error) {
	var admins []models.User
	err := s.db.WithContext(ctx).Where("role = ?", models.RoleAdmin).Order("email").Find(&admins).Error
	if err != nil {
		return nil, models.NewInternalError("Failed to list admins", err)
	}
	return admins, nil
}
