package api

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/seminarhub/backend/internal/apperr"
	"github.com/seminarhub/backend/internal/model"
)

const tokenTTL = 24 * time.Hour

// Claims полезная нагрузка токена доступа
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// issueToken подписывает токен доступа для пользователя
func (s *Server) issueToken(user *model.User) (string, error) {
	claims := Claims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// authMiddleware проверяет Bearer-токен и кладёт claims в контекст запроса
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			return apperr.Unauthorized("missing access token")
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, apperr.Unauthorized("unexpected signing method")
			}
			return []byte(s.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			return apperr.Unauthorized("invalid or expired access token")
		}

		c.Set("claims", claims)
		return next(c)
	}
}

// requireRole пускает дальше только пользователей с одной из ролей
func requireRole(roles ...model.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := currentClaims(c)
			if claims == nil {
				return apperr.Unauthorized("missing access token")
			}
			for _, role := range roles {
				if claims.Role == string(role) {
					return next(c)
				}
			}
			return apperr.PermissionDenied("insufficient role")
		}
	}
}

func currentClaims(c echo.Context) *Claims {
	claims, _ := c.Get("claims").(*Claims)
	return claims
}

func currentUserID(c echo.Context) string {
	if claims := currentClaims(c); claims != nil {
		return claims.UserID
	}
	return ""
}
