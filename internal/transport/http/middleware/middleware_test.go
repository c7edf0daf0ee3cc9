package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"chemsite/internal/pkg/jwtutil"
	"chemsite/internal/platform/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(HeaderRequestID)
	assert.Len(t, generated, 26)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}

func TestRequestLoggerLevelsByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(RequestID(), RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) {
		logging.FromContext(c.Request.Context()).Info("inside handler")
		c.Status(http.StatusOK)
	})
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))

	inside := logs.FilterMessage("inside handler").All()
	require.Len(t, inside, 1)
	assert.NotEmpty(t, inside[0].ContextMap()["request_id"])
	assert.Equal(t, "/ok", inside[0].ContextMap()["route"])

	completed := logs.FilterMessage("request completed").All()
	require.Len(t, completed, 2)
	assert.Equal(t, zapcore.InfoLevel, completed[0].Level)
	assert.Equal(t, zapcore.WarnLevel, completed[1].Level)
}

func TestRecoveryReturnsJSONError(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(RequestID(), RequestLogger(zap.New(core)), Recovery())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestVisitorIssuesCookieOnce(t *testing.T) {
	r := gin.New()
	r.Use(Visitor(false))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, VisitorID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, VisitorCookie, cookies[0].Name)
	_, err := uuid.Parse(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, cookies[0].Value, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Result().Cookies())
	assert.Equal(t, cookies[0].Value, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: "not-a-uuid"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Len(t, w.Result().Cookies(), 1)
	assert.NotEqual(t, "not-a-uuid", w.Body.String())
}

func TestAuthJWT(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AuthJWT("secret"), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUsernameKey))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Basic abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, _, err := jwtutil.GenerateToken("secret", time.Minute, "admin")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())

	forged, _, err := jwtutil.GenerateToken("other-secret", time.Minute, "admin")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
