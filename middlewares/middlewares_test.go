package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yeremiapane/food-delivery-web/models"
	"github.com/yeremiapane/food-delivery-web/utils"
)

func TestMain(m *testing.M) {
	utils.SilenceLoggers()
	gin.SetMode(gin.TestMode)
	m.Run()
}

func serve(r *gin.Engine, method, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if mutate != nil {
		mutate(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func withRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(RoleKey, role)
		c.Next()
	}
}

func TestRoleCheck(t *testing.T) {
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	r := gin.New()
	r.GET("/none", RoleCheck(models.RoleRestaurant), ok)
	r.GET("/owner", withRole(models.RoleRestaurant), RoleCheck(models.RoleRestaurant), ok)
	r.GET("/driver", withRole(models.RoleDelivery), RoleCheck(models.RoleRestaurant, models.RoleAdmin), ok)

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/none", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/owner", nil).Code)

	w := serve(r, http.MethodGet, "/driver", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "restaurant or admin access required")
}

func TestRateLimiter_PerIP(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	r := gin.New()
	r.GET("/", rl.RateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	from := func(addr string) func(*http.Request) {
		return func(req *http.Request) { req.RemoteAddr = addr }
	}

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", from("10.0.0.1:1000")).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", from("10.0.0.1:1000")).Code)
	w := serve(r, http.MethodGet, "/", from("10.0.0.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")

	// another client has its own bucket
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", from("10.0.0.2:1000")).Code)
}

func TestRateLimiter_DropsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	start := time.Now()

	rl.get("10.0.0.1", start)
	rl.get("10.0.0.2", start.Add(rl.idleTTL))

	// requests never sweep; only the periodic cleanup does
	rl.get("10.0.0.3", start.Add(rl.idleTTL+time.Second))
	rl.mu.Lock()
	assert.Len(t, rl.ips, 3)
	rl.mu.Unlock()

	assert.Equal(t, 1, rl.cleanup(start.Add(rl.idleTTL+time.Second)))
	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.ips, 2)
	assert.NotContains(t, rl.ips, "10.0.0.1")
}

func TestRateLimiter_StartCleanupSweeps(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.idleTTL = time.Millisecond
	rl.get("10.0.0.1", time.Now())

	rl.StartCleanup(5 * time.Millisecond)

	assert.Eventually(t, func() bool {
		rl.mu.Lock()
		defer rl.mu.Unlock()
		return len(rl.ips) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestStrictRateLimiter(t *testing.T) {
	rl := NewStrictRateLimiter()
	r := gin.New()
	r.POST("/login", rl.RateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/login", nil).Code)
	}
	w := serve(r, http.MethodPost, "/login", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many attempts")
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.GET("/", SecurityHeaders(), NoStore(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/", nil)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddlewares("http://localhost:3000"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodOptions, "/", func(req *http.Request) {
		req.Header.Set("Origin", "http://localhost:3000")
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestSessionToken_CookieThenBearer(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, sessionToken(c)) })

	w := serve(r, http.MethodGet, "/", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer from-header")
	})
	assert.Equal(t, "from-header", w.Body.String())

	w = serve(r, http.MethodGet, "/", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer from-header")
		req.AddCookie(&http.Cookie{Name: "fd_session", Value: "from-cookie"})
	})
	assert.Equal(t, "from-cookie", w.Body.String())
}
