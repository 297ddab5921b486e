package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/payhub-backend/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, "en", parseLanguage(""))
	assert.Equal(t, "zh_TW", parseLanguage("zh-TW,zh;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", parseLanguage("fr-FR"))
}

func newAuthRouter() *gin.Engine {
	r := gin.New()
	r.Use(I18nMiddleware())
	r.GET("/me", AuthRequired(), func(c *gin.Context) {
		id, _ := utils.GetUserIDFromContext(c)
		c.String(http.StatusOK, id.String())
	})
	r.GET("/studio", AuthRequired(), FreelancerRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/admin", AuthRequired(), AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	utils.SetJWTSecret("middleware-secret")
	r := newAuthRouter()
	userID := uuid.New()
	token, err := utils.GenerateJWT(userID, "f@example.com", "freelancer", 1)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())

	refresh, err := utils.GenerateRefreshToken(userID, 1)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleGuards(t *testing.T) {
	utils.SetJWTSecret("middleware-secret")
	r := newAuthRouter()

	call := func(path, role string) int {
		token, err := utils.GenerateJWT(uuid.New(), "u@example.com", role, 1)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, call("/studio", "freelancer"))
	assert.Equal(t, http.StatusNoContent, call("/studio", "superfreelancer"))
	assert.Equal(t, http.StatusForbidden, call("/studio", "client"))
	assert.Equal(t, http.StatusForbidden, call("/admin", "freelancer"))
	assert.Equal(t, http.StatusNoContent, call("/admin", "admin"))
}

func TestRateLimiterBlocksBurst(t *testing.T) {
	rl := NewRateLimiter(0, 2)
	r := gin.New()
	r.GET("/x", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
