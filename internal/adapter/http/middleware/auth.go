package middleware

import (
	"errors"
	"net/http"
	"strings"

	"taskmanager/internal/adapter/auth"
	"taskmanager/internal/core/domain"
	"taskmanager/pkg/apierrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const userKey = "user"

// TokenVerifier resolves a bearer token to the calling user.
type TokenVerifier interface {
	Verify(token string) (domain.User, error)
}

// Auth rejects requests without a valid bearer token and stores the
// resolved user on the context.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := GetLang(c)

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, apierrors.MsgUnauthorized, lang)
			return
		}

		user, err := verifier.Verify(token)
		if err != nil {
			zap.L().Debug("rejected bearer token", zap.String("path", c.Request.URL.Path), zap.Error(err))
			msgKey := apierrors.MsgUnauthorized
			if errors.Is(err, auth.ErrExpiredToken) {
				msgKey = apierrors.MsgTokenExpired
			}
			abortUnauthorized(c, msgKey, lang)
			return
		}

		SetUser(c, user)
		c.Next()
	}
}

func SetUser(c *gin.Context, user domain.User) {
	c.Set(userKey, user)
}

// GetUser returns the user stored by Auth.
func GetUser(c *gin.Context) (domain.User, bool) {
	value, exists := c.Get(userKey)
	if !exists {
		return domain.User{}, false
	}
	user, ok := value.(domain.User)
	return user, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, msgKey, lang string) {
	c.AbortWithStatusJSON(
		http.StatusUnauthorized,
		apierrors.CreateError(http.StatusUnauthorized, msgKey, lang),
	)
}
