package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/nft-registry/internal/api/apierrors"
	"github.com/feral-file/nft-registry/internal/domain"
	"github.com/feral-file/nft-registry/internal/logger"
)

// CallerPrincipalHeader carries the principal on whose behalf a mutation is
// executed. Authorization decisions against that principal (ownership,
// operator, custodian capability) happen in the registry, not here.
const CallerPrincipalHeader = "X-Caller-Principal"

// AuthConfig holds authentication configuration
type AuthConfig struct {
	APIKeys []string
}

// CallerPrincipal extracts the caller principal from the request headers.
func CallerPrincipal(c *gin.Context) (domain.Principal, bool) {
	value := strings.TrimSpace(c.GetHeader(CallerPrincipalHeader))
	if value == "" {
		return "", false
	}
	return domain.Principal(value), true
}

// APIKeyAuth returns a gin middleware validating API key authentication.
// The Authorization header format is "APIKey <key>".
func APIKeyAuth(cfg AuthConfig) gin.HandlerFunc {
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	return func(c *gin.Context) {
		if err := authenticate(c.GetHeader("Authorization"), apiKeyMap); err != nil {
			logger.Warn("Authentication failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			apiErr := apierrors.NewUnauthorizedError("Authentication failed", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiErr)
			return
		}

		c.Next()
	}
}

func authenticate(authHeader string, validKeys map[string]bool) error {
	if authHeader == "" {
		return errors.New("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return errors.New("invalid Authorization header format")
	}
	if !strings.EqualFold(parts[0], "apikey") {
		return fmt.Errorf("unsupported authorization type: %s", parts[0])
	}

	if len(validKeys) == 0 {
		return errors.New("no API keys configured")
	}
	if !validKeys[parts[1]] {
		return errors.New("invalid API key")
	}

	return nil
}
