package models

import (
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OAuthClient is a staff API client (e.g. the kitchen display) acting on
// behalf of the user that owns it. Secret holds a bcrypt hash.
type OAuthClient struct {
	ID         string         `gorm:"primaryKey" json:"id"`
	Secret     string         `gorm:"not null" json:"-"`
	Name       string         `json:"name"`
	Domain     string         `json:"domain"`
	UserID     uint           `gorm:"index" json:"user_id"`
	Scopes     string         `json:"scopes"`      // Space-separated list of allowed scopes
	GrantTypes string         `json:"grant_types"` // Only "client_credentials" is issued
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (OAuthClient) TableName() string {
	return "oauth_clients"
}

// oauth2.ClientInfo

func (c *OAuthClient) GetID() string {
	return c.ID
}

func (c *OAuthClient) GetSecret() string {
	return c.Secret
}

func (c *OAuthClient) GetDomain() string {
	return c.Domain
}

func (c *OAuthClient) IsPublic() bool {
	return false
}

func (c *OAuthClient) GetUserID() string {
	if c.UserID == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(c.UserID), 10)
}

// VerifyPassword compares a plain secret against the stored bcrypt hash.
func (c *OAuthClient) VerifyPassword(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.Secret), []byte(secret)) == nil
}
