package services

import (
	"context"
	"strings"

	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ClientInput describes a new staff API client.
type ClientInput struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Scopes string `json:"scopes"`
}

// IssuedClient carries the plain secret. It is returned once, on creation.
type IssuedClient struct {
	models.OAuthClient
	ClientSecret string `json:"client_secret"`
}

// ClientService manages OAuth2 clients owned by staff users.
type ClientService interface {
	CreateClient(ctx context.Context, userID uint, in ClientInput) (*IssuedClient, error)
	GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error)
	GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error)
	DeleteClient(ctx context.Context, clientID string, userID uint) error
}

type clientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db}
}

func (s *clientService) CreateClient(ctx context.Context, userID uint, in ClientInput) (*IssuedClient, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("Name is required", "name")
	}
	if userID == 0 {
		return nil, models.NewValidationError("Client owner is required", "user_id")
	}

	secret := uuid.NewString()
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError("Secret generation failed", err)
	}

	client := models.OAuthClient{
		ID:         uuid.NewString(),
		Secret:     string(hashed),
		Name:       name,
		Domain:     strings.TrimSpace(in.Domain),
		UserID:     userID,
		Scopes:     strings.TrimSpace(in.Scopes),
		GrantTypes: "client_credentials",
	}
	if err := s.db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, models.NewInternalError("Client creation failed", err)
	}
	log.WithFields(logrus.Fields{"client_id": client.ID, "user_id": userID}).Info("API client created")
	return &IssuedClient{OAuthClient: client, ClientSecret: secret}, nil
}

func (s *clientService) GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error) {
	clients := []models.OAuthClient{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&clients).Error; err != nil {
		return nil, models.NewInternalError("Failed to retrieve clients", err)
	}
	return clients, nil
}

func (s *clientService) GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error) {
	var client models.OAuthClient
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&client).Error; err != nil {
		return nil, notFoundOr(err, "Client not found")
	}
	return &client, nil
}

func (s *clientService) DeleteClient(ctx context.Context, clientID string, userID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", clientID, userID).Delete(&models.OAuthClient{})
	if result.Error != nil {
		return models.NewInternalError("Failed to delete client", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Client not found")
	}
	return nil
}
