package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func adminRouter(key string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/admin/override", AdminMiddleware(key), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func adminRequest(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/override", nil)
	if key != "" {
		req.Header.Set(HeaderAdminKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminMiddleware(t *testing.T) {
	r := adminRouter("s3cret")

	assert.Equal(t, http.StatusOK, adminRequest(r, "s3cret").Code)
	assert.Equal(t, http.StatusUnauthorized, adminRequest(r, "wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, adminRequest(r, "").Code)
}

func TestAdminMiddlewareDisabledWithoutKey(t *testing.T) {
	r := adminRouter("")

	// No configured key means the endpoint is off, even for empty headers.
	assert.Equal(t, http.StatusForbidden, adminRequest(r, "").Code)
	assert.Equal(t, http.StatusForbidden, adminRequest(r, "anything").Code)
}
