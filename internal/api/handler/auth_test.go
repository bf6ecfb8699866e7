package handler

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/coach_go_server/config"
	"github.com/qs3c/coach_go_server/internal/model/dto"
	"github.com/qs3c/coach_go_server/internal/pkg/jwt"
	"github.com/qs3c/coach_go_server/internal/pkg/response"
	"github.com/qs3c/coach_go_server/internal/repository"
	"github.com/qs3c/coach_go_server/internal/service"
	"github.com/qs3c/coach_go_server/internal/testutil"
)

const testSecret = "test-secret-key"

func setupAuthRouter(t *testing.T) (*gin.Engine, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	userRepo := repository.NewUserRepository(db)

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:      testSecret,
			ExpireHours: 24,
		},
	}

	handler := NewAuthHandler(service.NewAuthService(userRepo, cfg))

	router := gin.New()
	router.POST("/register", handler.Register)
	router.POST("/login", handler.Login)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return router, cleanup
}

func TestAuthHandler_Register_Success(t *testing.T) {
	router, cleanup := setupAuthRouter(t)
	defer cleanup()

	req := dto.RegisterRequest{
		Email:    "coach@example.com",
		Username: "coach",
		Password: "password123",
		Role:     "trainer",
	}

	w := performRequest(router, "POST", "/register", req)
	resp := assertCode(t, w, response.CodeSuccess)
	assert.NotZero(t, dataMap(t, resp)["user_id"])
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	router, cleanup := setupAuthRouter(t)
	defer cleanup()

	req := dto.RegisterRequest{
		Email:    "test@example.com",
		Username: "testuser1",
		Password: "password123",
		Role:     "client",
	}

	w := performRequest(router, "POST", "/register", req)
	assertCode(t, w, response.CodeSuccess)

	// Duplicate email
	req.Username = "testuser2"
	w = performRequest(router, "POST", "/register", req)
	assertCode(t, w, response.CodeParamError)
}

func TestAuthHandler_Register_InvalidRequest(t *testing.T) {
	router, cleanup := setupAuthRouter(t)
	defer cleanup()

	t.Run("missing fields", func(t *testing.T) {
		w := performRequest(router, "POST", "/register", map[string]string{"email": "invalid-email"})
		assertCode(t, w, response.CodeParamError)
	})

	t.Run("admin role not self-service", func(t *testing.T) {
		w := performRequest(router, "POST", "/register", dto.RegisterRequest{
			Email:    "root@example.com",
			Username: "rootuser",
			Password: "password123",
			Role:     "admin",
		})
		assertCode(t, w, response.CodeParamError)
	})
}

func TestAuthHandler_Login_Success(t *testing.T) {
	router, cleanup := setupAuthRouter(t)
	defer cleanup()

	w := performRequest(router, "POST", "/register", dto.RegisterRequest{
		Email:    "login@example.com",
		Username: "loginuser",
		Password: "password123",
		Role:     "trainer",
	})
	assertCode(t, w, response.CodeSuccess)

	w = performRequest(router, "POST", "/login", dto.LoginRequest{
		Email:    "login@example.com",
		Password: "password123",
	})
	resp := assertCode(t, w, response.CodeSuccess)

	data := dataMap(t, resp)
	token, ok := data["token"].(string)
	require.True(t, ok)

	claims, err := jwt.ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "trainer", claims.Role)

	user, ok := data["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "trainer", user["role"])
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	router, cleanup := setupAuthRouter(t)
	defer cleanup()

	w := performRequest(router, "POST", "/login", dto.LoginRequest{
		Email:    "nonexistent@example.com",
		Password: "wrongpassword",
	})
	assertCode(t, w, response.CodeAuthFailed)
}

func TestAuthHandler_Login_InvalidRequest(t *testing.T) {
	router, cleanup := setupAuthRouter(t)
	defer cleanup()

	w := performRequest(router, "POST", "/login", map[string]string{})
	assertCode(t, w, response.CodeParamError)
}
