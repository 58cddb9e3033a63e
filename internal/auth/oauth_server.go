package auth

import (
	"context"
	"time"

	"github.com/go-oauth2/oauth2/v4"
	"github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// StaffTokenTTL is the lifetime of access tokens issued to staff API clients.
const StaffTokenTTL = 2 * time.Hour

// OAuthService issues client_credentials tokens to staff API clients such as
// the kitchen display. Tokens carry the owning user's id and role, so the
// same JWT middleware accepts them.
type OAuthService struct {
	server *server.Server
	tokens *GormTokenStore
	db     *gorm.DB
}

func NewOAuthService(db *gorm.DB, jwtSecret string) *OAuthService {
	manager := manage.NewDefaultManager()
	manager.SetClientTokenCfg(&manage.Config{AccessTokenExp: StaffTokenTTL})

	// JWT access tokens with uid and role claims
	manager.MapAccessGenerate(NewCustomJWTAccessGenerate([]byte(jwtSecret), jwt.SigningMethodHS512, db))

	tokens := NewGormTokenStore(db)
	manager.MustTokenStorage(tokens, nil)
	manager.MapClientStorage(NewGormClientStore(db))

	srv := server.NewDefaultServer(manager)
	srv.SetAllowGetAccessRequest(false)
	srv.SetAllowedGrantType(oauth2.ClientCredentials)
	srv.SetClientInfoHandler(server.ClientFormHandler)

	srv.SetInternalErrorHandler(func(err error) *errors.Response {
		log.WithError(err).Error("OAuth2 internal error")
		return nil
	})
	srv.SetResponseErrorHandler(func(re *errors.Response) {
		log.WithField("error", re.Error).Warn("OAuth2 token request rejected")
	})

	return &OAuthService{
		server: srv,
		tokens: tokens,
		db:     db,
	}
}

func (o *OAuthService) GetServer() *server.Server {
	return o.server
}

// PurgeExpiredTokens deletes stored staff tokens past their expiry.
func (o *OAuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return o.tokens.PurgeExpired(ctx)
}

// SetLogLevel adjusts the auth logger.
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}
