package middleware

import (
	"context"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/ktsujino/inventory-backend/internal/repository"
	"github.com/labstack/echo/v4"
)

// ContextUserID is the echo context key holding the local user id of the
// authenticated caller.
const ContextUserID = "userID"

type AuthMiddleware struct {
	authClient *auth.Client
	userRepo   repository.UserRepository
}

func NewAuthMiddleware(ctx context.Context, projectID string, userRepo repository.UserRepository) (*AuthMiddleware, error) {
	if projectID == "" {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "FIREBASE_PROJECT_ID is not set")
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return &AuthMiddleware{authClient: client, userRepo: userRepo}, nil
}

// RequireAuth verifies the Firebase ID token and resolves it to a local user
// row, provisioning one on first sight. The numeric user id is what every
// downstream operation receives; no handler reads ambient auth state.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authz := c.Request().Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		tokenStr := strings.TrimPrefix(authz, "Bearer ")
		token, err := m.authClient.VerifyIDToken(c.Request().Context(), tokenStr)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
		}
		user, err := m.userRepo.FindOrCreateByUID(c.Request().Context(), token.UID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "user_lookup_failed"})
		}
		c.Set("uid", token.UID)
		c.Set(ContextUserID, user.ID)
		return next(c)
	}
}

func (m *AuthMiddleware) Client() *auth.Client {
	return m.authClient
}
