package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/coach_go_server/internal/api/middleware"
	"github.com/qs3c/coach_go_server/internal/model"
	"github.com/qs3c/coach_go_server/internal/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testContext 本地测试上下文
type testContext struct {
	DB *gorm.DB
}

// mockAuth 模拟认证中间件
func mockAuth(userID int64, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.RoleKey, role)
		c.Next()
	}
}

func mockAuthAs(u *model.User) gin.HandlerFunc {
	return mockAuth(u.ID, u.Role)
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

// dataMap 取响应 data 中的对象
func dataMap(t *testing.T, resp response.Response) map[string]interface{} {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data should be an object, got %T", resp.Data)
	return data
}

func assertCode(t *testing.T, w *httptest.ResponseRecorder, want int) response.Response {
	t.Helper()
	assert.Equal(t, http.StatusOK, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, want, resp.Code, "message: %s", resp.Message)
	return resp
}

type fakeStorage struct{}

func (fakeStorage) UploadAvatar(userID int64, data []byte, ext string) (string, error) {
	return fmt.Sprintf("https://cdn.example.com/avatars/%d%s", userID, ext), nil
}

func (fakeStorage) UploadBundleCover(bundleID int64, data []byte, ext string) (string, error) {
	return fmt.Sprintf("https://cdn.example.com/covers/%d%s", bundleID, ext), nil
}

func (fakeStorage) DeleteByURL(string) error { return nil }
