package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "invoice-system/pkg/errors"
	"invoice-system/pkg/service"
	"invoice-system/pkg/utils"
)

type AuthMiddleware struct {
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		logger:     logger,
	}
}

// Auth checks the Bearer token and stores the user id in the request context.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		return m.authenticate(c, parts[1], next)
	}
}

// QueryAuth is Auth for browser websockets, which cannot set headers: the token comes in ?token=.
func (m *AuthMiddleware) QueryAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := c.QueryParam("token")
		if token == "" {
			return utils.ErrorResponse(c, apperrors.ErrUnauthorized, m.logger)
		}
		return m.authenticate(c, token, next)
	}
}

func (m *AuthMiddleware) authenticate(c echo.Context, tokenString string, next echo.HandlerFunc) error {
	claims, err := m.jwtService.ValidateToken(tokenString)
	if err != nil {
		return utils.ErrorResponse(c, err, m.logger)
	}

	if claims.IsRefreshToken {
		return utils.ErrorResponse(c, apperrors.ErrTokenIsNotAccess, m.logger)
	}

	ctx := utils.WithUserID(c.Request().Context(), claims.UserID)
	c.SetRequest(c.Request().WithContext(ctx))

	m.logger.Debug("authenticated", zap.String("userID", claims.UserID.String()))

	return next(c)
}
