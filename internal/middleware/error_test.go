package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucidplay/crashgate/internal/pkg/apperrors"
)

func errorRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/phase", func(c *gin.Context) {
		_ = c.Error(apperrors.NewPhaseViolation("bets are closed"))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("something broke"))
	})
	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func getJSON(t *testing.T, r *gin.Engine, path string) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestErrorHandlerMapsAppErrors(t *testing.T) {
	r := errorRouter()

	code, body := getJSON(t, r, "/phase")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, string(apperrors.ErrPhaseViolation), body["code"])
	assert.Equal(t, "bets are closed", body["message"])
}

func TestErrorHandlerWrapsPlainErrors(t *testing.T) {
	r := errorRouter()

	code, body := getJSON(t, r, "/plain")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, string(apperrors.ErrInternal), body["code"])
}

func TestErrorHandlerLeavesCleanRequestsAlone(t *testing.T) {
	r := errorRouter()

	code, body := getJSON(t, r, "/ok")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}
