package router_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/food-delivery-web/apiclient"
	"github.com/yeremiapane/food-delivery-web/cache"
	"github.com/yeremiapane/food-delivery-web/config"
	"github.com/yeremiapane/food-delivery-web/models"
	"github.com/yeremiapane/food-delivery-web/notify"
	"github.com/yeremiapane/food-delivery-web/router"
	"github.com/yeremiapane/food-delivery-web/services"
	"github.com/yeremiapane/food-delivery-web/session"
	"github.com/yeremiapane/food-delivery-web/utils"
)

func TestMain(m *testing.M) {
	utils.SilenceLoggers()
	gin.SetMode(gin.TestMode)
	m.Run()
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

// upstream stands in for the food-delivery API.
type upstream struct {
	mu   sync.Mutex
	hits map[string]int
	// availability PATCHes block until gate is closed (when set)
	gate chan struct{}

	profileName string
	revoked     bool
	menuForms   []menuForm
	driver      models.Driver
	locations   []map[string]float64

	srv *httptest.Server
}

// menuForm is a multipart menu item request as the upstream received it.
type menuForm struct {
	Method string
	Values map[string]string
	Files  map[string]string
}

func newUpstream(t *testing.T) *upstream {
	u := &upstream{
		hits:   make(map[string]int),
		driver: models.Driver{ID: "drv1", UserID: "u-driver", VehicleType: models.VehicleMotorcycle, IsAvailable: true},
	}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		u.hit("login")
		var in apiclient.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		switch in.Email {
		case "owner@example.com":
			writeJSON(w, http.StatusOK, gin.H{"token": "up-owner", "user": gin.H{"id": "u-owner", "name": "Owner", "email": in.Email, "role": "restaurant"}})
		case "driver@example.com":
			writeJSON(w, http.StatusOK, gin.H{"token": "up-driver", "user": gin.H{"id": "u-driver", "name": "Driver", "email": in.Email, "role": "delivery"}})
		case "customer@example.com":
			writeJSON(w, http.StatusOK, gin.H{"token": "up-customer", "user": gin.H{"id": "u-customer", "name": "Customer", "email": in.Email, "role": "customer"}})
		default:
			writeJSON(w, http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		}
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		u.hit("logout")
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /auth/profile", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		revoked, name := u.revoked, u.profileName
		u.mu.Unlock()
		if revoked {
			writeJSON(w, http.StatusUnauthorized, gin.H{"message": "Token expired"})
			return
		}
		switch r.Header.Get("Authorization") {
		case "Bearer up-owner":
			if name == "" {
				name = "Owner"
			}
			writeJSON(w, http.StatusOK, gin.H{"id": "u-owner", "name": name, "email": "owner@example.com", "role": "restaurant"})
		case "Bearer up-driver":
			writeJSON(w, http.StatusOK, gin.H{"id": "u-driver", "name": "Driver", "email": "driver@example.com", "role": "delivery"})
		default:
			writeJSON(w, http.StatusOK, gin.H{"id": "u-customer", "name": "Customer", "email": "customer@example.com", "role": "customer"})
		}
	})
	mux.HandleFunc("GET /restaurants", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.Restaurant{
			{ID: "r1", Name: "Cafe Colombo", IsAvailable: true},
			{ID: "r2", Name: "Closed Kitchen", IsAvailable: false},
		})
	})
	mux.HandleFunc("GET /restaurants/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Restaurant{ID: "r1", Name: "Cafe Colombo", IsAvailable: true})
	})
	mux.HandleFunc("PATCH /restaurants/{id}/availability", func(w http.ResponseWriter, r *http.Request) {
		u.hit("availability")
		u.mu.Lock()
		gate := u.gate
		u.mu.Unlock()
		if gate != nil {
			<-gate
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /restaurants/register", func(w http.ResponseWriter, r *http.Request) {
		u.hit("register")
		writeJSON(w, http.StatusBadRequest, gin.H{"errors": []apiclient.FieldError{
			{Param: "email", Msg: "Email is already registered"},
		}})
	})
	mux.HandleFunc("GET /categories", func(w http.ResponseWriter, r *http.Request) {
		u.hit("categories")
		writeJSON(w, http.StatusOK, []models.Category{
			{ID: "c1", Name: "Rice & Curry", RestaurantID: "r1"},
			{ID: "c2", Name: "Kottu", RestaurantID: "r1"},
		})
	})
	mux.HandleFunc("POST /categories", func(w http.ResponseWriter, r *http.Request) {
		var in apiclient.CategoryInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		writeJSON(w, http.StatusCreated, models.Category{ID: "c3", Name: in.Name, Description: in.Description, RestaurantID: in.RestaurantID})
	})
	mux.HandleFunc("PUT /categories/{id}", func(w http.ResponseWriter, r *http.Request) {
		u.hit("category-put")
		var in apiclient.CategoryInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		writeJSON(w, http.StatusOK, models.Category{ID: r.PathValue("id"), Name: in.Name, Description: in.Description, RestaurantID: in.RestaurantID})
	})
	mux.HandleFunc("DELETE /categories/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "missing" {
			writeJSON(w, http.StatusNotFound, gin.H{"message": "Category not found"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /menu-items", func(w http.ResponseWriter, r *http.Request) {
		u.hit("menu-items")
		writeJSON(w, http.StatusOK, []models.MenuItem{
			{ID: "m1", Name: "Chicken Kottu", Price: 850, CategoryID: "c2", IsAvailable: true, RestaurantID: "r1"},
		})
	})
	writeMenuItem := func(w http.ResponseWriter, r *http.Request, id string) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeJSON(w, http.StatusBadRequest, gin.H{"message": "expected multipart"})
			return
		}
		form := menuForm{Method: r.Method, Values: map[string]string{}, Files: map[string]string{}}
		for k, v := range r.MultipartForm.Value {
			form.Values[k] = v[0]
		}
		for k, fhs := range r.MultipartForm.File {
			form.Files[k] = fhs[0].Filename
		}
		u.mu.Lock()
		u.menuForms = append(u.menuForms, form)
		u.mu.Unlock()

		if form.Values["categoryId"] == "gone" {
			writeJSON(w, http.StatusBadRequest, gin.H{"errors": []apiclient.FieldError{
				{Param: "categoryId", Msg: "Category does not exist"},
			}})
			return
		}
		price, _ := strconv.ParseFloat(form.Values["price"], 64)
		status := http.StatusOK
		if r.Method == http.MethodPost {
			status = http.StatusCreated
		}
		writeJSON(w, status, models.MenuItem{
			ID:           id,
			Name:         form.Values["name"],
			Price:        price,
			CategoryID:   form.Values["categoryId"],
			IsAvailable:  form.Values["isAvailable"] == "true",
			RestaurantID: form.Values["restaurantId"],
		})
	}
	mux.HandleFunc("POST /menu-items", func(w http.ResponseWriter, r *http.Request) {
		writeMenuItem(w, r, "m2")
	})
	mux.HandleFunc("PUT /menu-items/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeMenuItem(w, r, r.PathValue("id"))
	})

	mux.HandleFunc("POST /drivers/register", func(w http.ResponseWriter, r *http.Request) {
		u.hit("driver-register")
		var in apiclient.DriverSignup
		_ = json.NewDecoder(r.Body).Decode(&in)
		writeJSON(w, http.StatusCreated, models.Driver{
			ID: "drv1", UserID: "u-driver", VehicleType: in.VehicleType,
			VehicleNumber: in.VehicleNumber, LicenseNumber: in.LicenseNumber,
		})
	})
	mux.HandleFunc("GET /drivers/me", func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		d := u.driver
		u.mu.Unlock()
		writeJSON(w, http.StatusOK, d)
	})
	mux.HandleFunc("PATCH /drivers/location", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]float64
		_ = json.NewDecoder(r.Body).Decode(&body)
		u.mu.Lock()
		u.locations = append(u.locations, body)
		u.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("PATCH /drivers/availability", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]bool
		_ = json.NewDecoder(r.Body).Decode(&body)
		u.mu.Lock()
		u.driver.IsAvailable = body["isAvailable"]
		u.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /drivers/deliveries/{id}/accept", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		u.hit("accept:" + id)
		u.mu.Lock()
		u.driver.CurrentDelivery = &id
		u.driver.IsAvailable = false
		u.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /drivers/deliveries/{id}/complete", func(w http.ResponseWriter, r *http.Request) {
		u.hit("complete:" + r.PathValue("id"))
		u.mu.Lock()
		u.driver.CurrentDelivery = nil
		u.driver.IsAvailable = true
		u.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("GET /orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer up-owner" || r.PathValue("id") != "o1" {
			writeJSON(w, http.StatusNotFound, gin.H{"message": "Order not found"})
			return
		}
		writeJSON(w, http.StatusOK, models.Order{ID: "o1", RestaurantID: "r1", Status: models.OrderPreparing})
	})
	mux.HandleFunc("GET /deliveries/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, gin.H{"message": "database is down"})
	})

	u.srv = httptest.NewServer(mux)
	t.Cleanup(u.srv.Close)
	return u
}

func (u *upstream) hit(name string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.hits[name]++
}

func (u *upstream) count(name string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hits[name]
}

func (u *upstream) lastMenuForm(t *testing.T) menuForm {
	t.Helper()
	u.mu.Lock()
	defer u.mu.Unlock()
	require.NotEmpty(t, u.menuForms)
	return u.menuForms[len(u.menuForms)-1]
}

func (u *upstream) menuFormCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.menuForms)
}

func (u *upstream) pushedLocations() []map[string]float64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]map[string]float64(nil), u.locations...)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type testApp struct {
	router   *gin.Engine
	upstream *upstream
	deps     router.Deps
}

func setupApp(t *testing.T) *testApp {
	up := newUpstream(t)

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Session{}))

	cfg := config.Config{
		GinMode:            gin.TestMode,
		CORSOrigin:         "http://localhost:3000",
		MapsAPIKey:         "maps-key",
		RateLimitRPS:       1000,
		RateLimitBurst:     1000,
		DriverPollInterval: time.Hour,
		LocationThreshold:  services.DefaultLocationThreshold,
	}

	api := apiclient.New(up.srv.URL, 5*time.Second)
	hub := notify.NewHub()
	shared := cache.New(nil, "test", time.Minute)
	deps := router.Deps{
		Config:   cfg,
		API:      api,
		Sessions: session.NewService(session.NewGormStore(db), api, time.Hour),
		Hub:      hub,
		Trackers: services.NewTrackerRegistry(api, hub, services.TrackerConfig{PollInterval: time.Hour}),
		Toggler:  services.NewAvailabilityToggler(api, hub, shared, 5*time.Second),
		Cache:    shared,
	}
	t.Cleanup(deps.Toggler.Wait)
	t.Cleanup(deps.Trackers.StopAll)

	return &testApp{router: router.SetupRouter(deps), upstream: up, deps: deps}
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (a *testApp) doMultipart(t *testing.T, method, path string, body *bytes.Buffer, contentType string, cookie *http.Cookie) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func (a *testApp) dial(t *testing.T, srv *httptest.Server, cookie *http.Cookie) *websocket.Conn {
	header := http.Header{}
	header.Set("Cookie", cookie.String())
	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	require.NoError(t, err)
	return ws
}

// readUntil skips messages until one with event arrives.
func readUntil(t *testing.T, ws *websocket.Conn, event string) notify.Message {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var m notify.Message
		require.NoError(t, ws.ReadJSON(&m))
		if m.Event == event {
			return m
		}
	}
}

func (a *testApp) login(t *testing.T, email string) *http.Cookie {
	w, env := a.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": email, "password": "secret123"}, nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			assert.True(t, c.HttpOnly)
			return c
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil
}

func TestPing(t *testing.T) {
	app := setupApp(t)

	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestLogin_SetsCookieAndSession(t *testing.T) {
	app := setupApp(t)
	cookie := app.login(t, "owner@example.com")

	w, env := app.do(t, http.MethodGet, "/api/auth/session", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	var st session.State
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.True(t, st.Authenticated)
	require.NotNil(t, st.User)
	assert.Equal(t, models.RoleRestaurant, st.User.Role)
	assert.Equal(t, "u-owner", st.User.ID)
}

func TestLogin_InvalidFormIsRejectedLocally(t *testing.T) {
	app := setupApp(t)

	w, env := app.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "not-an-email", "password": "123"}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, string(env.Data), `"email"`)
	assert.Contains(t, string(env.Data), `"password"`)
	assert.Equal(t, 0, app.upstream.count("login"))
}

func TestLogin_UpstreamRejectionBecomesToast(t *testing.T) {
	app := setupApp(t)

	w, env := app.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "someone@example.com", "password": "secret123"}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", env.Message)
	assert.Empty(t, w.Result().Cookies())
}

func TestLogout_RedirectsHomeAndEndsSession(t *testing.T) {
	app := setupApp(t)
	cookie := app.login(t, "owner@example.com")

	w, _ := app.do(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, 1, app.upstream.count("logout"))

	w, env := app.do(t, http.MethodGet, "/api/auth/session", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Your session has expired. Please log in again", env.Message)
}

func TestAuth_MissingCookie(t *testing.T) {
	app := setupApp(t)

	w, env := app.do(t, http.MethodGet, "/api/restaurant/profile", nil, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Please log in to continue", env.Message)
}

func TestRoleCheck_DriverCannotOpenBackOffice(t *testing.T) {
	app := setupApp(t)
	cookie := app.login(t, "driver@example.com")

	w, _ := app.do(t, http.MethodGet, "/api/restaurant/profile", nil, cookie)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestNav_GuestAndOwner(t *testing.T) {
	app := setupApp(t)

	w, env := app.do(t, http.MethodGet, "/api/nav?path=/restaurants", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var guest struct {
		Items   []gin.H       `json:"items"`
		Session session.State `json:"session"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &guest))
	assert.False(t, guest.Session.Authenticated)
	assert.Equal(t, "Home", guest.Items[0]["label"])
	assert.Equal(t, false, guest.Items[0]["active"])
	assert.Equal(t, true, guest.Items[1]["active"])

	cookie := app.login(t, "owner@example.com")
	_, env = app.do(t, http.MethodGet, "/api/nav?path=/restaurant/categories/c1", nil, cookie)
	var owner struct {
		Items   []gin.H       `json:"items"`
		Session session.State `json:"session"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &owner))
	assert.True(t, owner.Session.Authenticated)
	assert.Equal(t, "Dashboard", owner.Items[0]["label"])
	assert.Equal(t, true, owner.Items[2]["active"])
}

func TestHome_OnlyOpenRestaurantsInMarquee(t *testing.T) {
	app := setupApp(t)

	w, env := app.do(t, http.MethodGet, "/api/home", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var home struct {
		Marquee []models.Restaurant `json:"marquee"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &home))
	require.Len(t, home.Marquee, 1)
	assert.Equal(t, "r1", home.Marquee[0].ID)
}

func TestConfig_ExposesMapsKey(t *testing.T) {
	app := setupApp(t)

	_, env := app.do(t, http.MethodGet, "/api/config", nil, nil)

	assert.JSONEq(t, `{"mapsApiKey":"maps-key"}`, string(env.Data))
}

func TestCategoryCRUD(t *testing.T) {
	app := setupApp(t)
	cookie := app.login(t, "owner@example.com")

	// List
	w, env := app.do(t, http.MethodGet, "/api/restaurant/categories", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Category
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 2)

	// Search is local; no second upstream fetch
	_, env = app.do(t, http.MethodGet, "/api/restaurant/categories?q=kot", nil, cookie)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Kottu", list[0].Name)
	assert.Equal(t, 1, app.upstream.count("categories"))

	// Create
	w, env = app.do(t, http.MethodPost, "/api/restaurant/categories", gin.H{"name": "Hoppers", "description": "Crispy"}, cookie)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Category
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "c3", created.ID)
	assert.Equal(t, "r1", created.RestaurantID)

	// Get
	w, _ = app.do(t, http.MethodGet, "/api/restaurant/categories/c3", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	// Update
	w, env = app.do(t, http.MethodPut, "/api/restaurant/categories/c1", gin.H{"name": "Rice and Curry"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "Rice and Curry")

	// Editing an id that is not in the list is a 404 and never reaches upstream
	w, env = app.do(t, http.MethodPut, "/api/restaurant/categories/zzz", gin.H{"name": "Ghost"}, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Record not found", env.Message)
	assert.Equal(t, 1, app.upstream.count("category-put"))
	_, env = app.do(t, http.MethodGet, "/api/restaurant/categories", nil, cookie)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 3)

	// Invalid create never leaves the server
	w, env = app.do(t, http.MethodPost, "/api/restaurant/categories", gin.H{"name": "  "}, cookie)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, string(env.Data), "Category name is required")

	// Delete
	w, _ = app.do(t, http.MethodDelete, "/api/restaurant/categories/c2", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = app.do(t, http.MethodGet, "/api/restaurant/categories/c2", nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = app.do(t, http.MethodDelete, "/api/restaurant/categories/missing", nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Category not found", env.Message)
}

func TestToggleAvailability_PendingThenConfirmed(t *testing.T) {
	app := setupApp(t)
	cookie := app.login(t, "owner@example.com")

	gate := make(chan struct{})
	app.upstream.mu.Lock()
	app.upstream.gate = gate
	app.upstream.mu.Unlock()

	w, env := app.do(t, http.MethodPost, "/api/restaurant/availability/toggle", nil, cookie)
	require.Equal(t, http.StatusAccepted, w.Code)
	var st services.AvailabilityState
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, services.PhasePending, st.Phase)
	assert.False(t, st.Available)

	// a second toggle while the first is in flight is refused
	w, _ = app.do(t, http.MethodPost, "/api/restaurant/availability/toggle", nil, cookie)
	assert.Equal(t, http.StatusConflict, w.Code)

	close(gate)
	app.deps.Toggler.Wait()

	_, env = app.do(t, http.MethodGet, "/api/restaurant/availability", nil, cookie)
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, services.PhaseConfirmed, st.Phase)
	assert.False(t, st.Available)
	assert.Equal(t, 1, app.upstream.count("availability"))
}

func TestRegisterRestaurant_CountryRejectedLocally(t *testing.T) {
	app := setupApp(t)

	body, contentType := registrationBody(t, "USA")
	req := httptest.NewRequest(http.MethodPost, "/api/restaurants/register", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Only Sri Lanka is allowed")
	assert.Equal(t, 0, app.upstream.count("register"))
}

func TestRegisterRestaurant_ServerFieldErrorMapsToField(t *testing.T) {
	app := setupApp(t)

	body, contentType := registrationBody(t, "Sri Lanka")
	req := httptest.NewRequest(http.MethodPost, "/api/restaurants/register", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.JSONEq(t, `{"errors":{"email":"Email is already registered"}}`, string(env.Data))
	assert.Equal(t, 1, app.upstream.count("register"))
}

func registrationBody(t *testing.T, country string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"restaurantName":  "Cafe Colombo",
		"ownerName":       "Nimal Perera",
		"email":           "owner@example.com",
		"phone":           "0771234567",
		"password":        "secret123",
		"confirmPassword": "secret123",
		"cuisineType":     "Sri Lankan",
		"street":          "12 Galle Road",
		"city":            "Colombo",
		"province":        "Western",
		"postalCode":      "00300",
		"country":         country,
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestCheckout_SummaryAndPay(t *testing.T) {
	app := setupApp(t)
	lines := []models.CartLine{{MenuItemID: "m1", Name: "Kottu", UnitPrice: 1000, Quantity: 2}}

	w, env := app.do(t, http.MethodPost, "/api/checkout/summary", gin.H{"lines": lines}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sum models.OrderSummary
	require.NoError(t, json.Unmarshal(env.Data, &sum))
	assert.Equal(t, 2000.0, sum.Subtotal)
	assert.Equal(t, services.DeliveryFee, sum.DeliveryFee)

	w, env = app.do(t, http.MethodPost, "/api/checkout/pay", gin.H{
		"lines":         lines,
		"paymentMethod": "card",
		"card":          gin.H{"holderName": "N Perera", "number": "4111111111111111", "expiry": "01/20", "cvv": "123"},
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, string(env.Data), "Card has expired")

	w, env = app.do(t, http.MethodPost, "/api/checkout/pay", gin.H{
		"lines":         lines,
		"paymentMethod": "cash_on_delivery",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"status":"confirmed"`)
}

func TestStrictRateLimit_OnLogin(t *testing.T) {
	app := setupApp(t)

	var last int
	for i := 0; i < 6; i++ {
		w, _ := app.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "bad", "password": "x"}, nil)
		last = w.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestOrderAndDeliveryLookup(t *testing.T) {
	app := setupApp(t)
	cookie := app.login(t, "owner@example.com")

	w, env := app.do(t, http.MethodGet, "/api/orders/o1", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var o models.Order
	require.NoError(t, json.Unmarshal(env.Data, &o))
	assert.Equal(t, models.OrderPreparing, o.Status)

	w, env = app.do(t, http.MethodGet, "/api/orders/o2", nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Order not found", env.Message)

	// upstream 5xx surfaces as a bad gateway with the upstream message
	w, env = app.do(t, http.MethodGet, "/api/deliveries/d1", nil, cookie)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "database is down", env.Message)
}

func TestWebSocket_ReceivesAvailabilityUpdate(t *testing.T) {
	app := setupApp(t)
	cookie := app.login(t, "owner@example.com")

	srv := httptest.NewServer(app.router)
	defer srv.Close()

	ws := app.dial(t, srv, cookie)
	defer ws.Close()

	require.Eventually(t, func() bool { return app.deps.Hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	w, _ := app.do(t, http.MethodPost, "/api/restaurant/availability/toggle", nil, cookie)
	require.Equal(t, http.StatusAccepted, w.Code)

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var update, toast notify.Message
	require.NoError(t, ws.ReadJSON(&update))
	require.NoError(t, ws.ReadJSON(&toast))

	assert.Equal(t, notify.EventAvailabilityUpdate, update.Event)
	assert.Equal(t, notify.EventToast, toast.Event)
	assert.Equal(t, "Restaurant is now closed", toast.Data.(map[string]interface{})["message"])
}

func TestWebSocket_RequiresSession(t *testing.T) {
	app := setupApp(t)
	srv := httptest.NewServer(app.router)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSession_RefreshesProfileUpstream(t *testing.T) {
	app := setupApp(t)
	cookie := app.login(t, "owner@example.com")

	app.upstream.mu.Lock()
	app.upstream.profileName = "Nimal Perera"
	app.upstream.mu.Unlock()

	w, env := app.do(t, http.MethodGet, "/api/auth/session", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var st session.State
	require.NoError(t, json.Unmarshal(env.Data, &st))
	require.NotNil(t, st.User)
	assert.Equal(t, "Nimal Perera", st.User.Name)

	// the upstream revoked the token: the local session ends too
	app.upstream.mu.Lock()
	app.upstream.revoked = true
	app.upstream.mu.Unlock()

	w, env = app.do(t, http.MethodGet, "/api/auth/session", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Your session has expired, please sign in again", env.Message)

	w, _ = app.do(t, http.MethodGet, "/api/restaurant/profile", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func menuItemBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, name := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write(pngBytes)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestMenuItems_MultipartCreateAndEdit(t *testing.T) {
	app := setupApp(t)
	cookie := app.login(t, "owner@example.com")

	w, env := app.do(t, http.MethodGet, "/api/restaurant/menu-items", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.MenuItem
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)

	hoppers := map[string]string{"name": "Egg Hoppers", "price": "350", "categoryId": "c1", "isAvailable": "true"}

	// a new item needs its main image; nothing is sent upstream without it
	body, ct := menuItemBody(t, hoppers, nil)
	w, env = app.doMultipart(t, http.MethodPost, "/api/restaurant/menu-items", body, ct, cookie)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"errors":{"mainImage":"Main image is required"}}`, string(env.Data))
	assert.Equal(t, 0, app.upstream.menuFormCount())

	body, ct = menuItemBody(t, hoppers, map[string]string{"mainImage": "hoppers.png", "thumbnail": "hoppers-sm.png"})
	w, env = app.doMultipart(t, http.MethodPost, "/api/restaurant/menu-items", body, ct, cookie)
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	var created models.MenuItem
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "m2", created.ID)
	assert.Equal(t, 350.0, created.Price)

	form := app.upstream.lastMenuForm(t)
	assert.Equal(t, http.MethodPost, form.Method)
	assert.Equal(t, "c1", form.Values["categoryId"])
	assert.Equal(t, "r1", form.Values["restaurantId"])
	assert.Equal(t, map[string]string{"mainImage": "hoppers.png", "thumbnail": "hoppers-sm.png"}, form.Files)

	// upstream field errors land on the form field of the same name
	gone := map[string]string{"name": "Pittu", "price": "300", "categoryId": "gone"}
	body, ct = menuItemBody(t, gone, map[string]string{"mainImage": "pittu.png"})
	w, env = app.doMultipart(t, http.MethodPost, "/api/restaurant/menu-items", body, ct, cookie)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"errors":{"categoryId":"Category does not exist"}}`, string(env.Data))

	// editing keeps the current image when none is uploaded
	edit := map[string]string{"name": "Chicken Kottu (large)", "price": "1200", "categoryId": "c2", "isAvailable": "true"}
	body, ct = menuItemBody(t, edit, nil)
	w, env = app.doMultipart(t, http.MethodPut, "/api/restaurant/menu-items/m1", body, ct, cookie)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	form = app.upstream.lastMenuForm(t)
	assert.Equal(t, http.MethodPut, form.Method)
	assert.Empty(t, form.Files)

	_, env = app.do(t, http.MethodGet, "/api/restaurant/menu-items", nil, cookie)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 2)
	names := []string{list[0].Name, list[1].Name}
	assert.Contains(t, names, "Chicken Kottu (large)")
	assert.Contains(t, names, "Egg Hoppers")
	assert.Equal(t, 1, app.upstream.count("menu-items"))

	sent := app.upstream.menuFormCount()
	body, ct = menuItemBody(t, edit, nil)
	w, _ = app.doMultipart(t, http.MethodPut, "/api/restaurant/menu-items/nope", body, ct, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, sent, app.upstream.menuFormCount())
}

func TestDriver_RegisterAvailabilityAndDeliveries(t *testing.T) {
	app := setupApp(t)
	cookie := app.login(t, "driver@example.com")

	w, env := app.do(t, http.MethodPost, "/api/driver/register", gin.H{
		"vehicleType": "rocket", "vehicleNumber": "CAB-1234", "licenseNumber": "B1234567",
	}, cookie)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, string(env.Data), `"vehicleType"`)
	assert.Equal(t, 0, app.upstream.count("driver-register"))

	w, env = app.do(t, http.MethodPost, "/api/driver/register", gin.H{
		"vehicleType": "motorcycle", "vehicleNumber": "CAB-1234", "licenseNumber": "B1234567",
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	var d models.Driver
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, "CAB-1234", d.VehicleNumber)

	w, env = app.do(t, http.MethodGet, "/api/driver/me", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.True(t, d.IsAvailable)

	w, _ = app.do(t, http.MethodPost, "/api/driver/availability", gin.H{}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = app.do(t, http.MethodPost, "/api/driver/availability", gin.H{"isAvailable": false}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.MsgNowOffline, env.Message)
	app.upstream.mu.Lock()
	assert.False(t, app.upstream.driver.IsAvailable)
	app.upstream.mu.Unlock()

	w, env = app.do(t, http.MethodPost, "/api/driver/deliveries/del-1/accept", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, "del-1", d.CurrentDeliveryID())
	assert.False(t, d.IsAvailable)
	assert.Equal(t, 1, app.upstream.count("accept:del-1"))

	w, env = app.do(t, http.MethodPost, "/api/driver/deliveries/del-1/complete", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	d = models.Driver{}
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Empty(t, d.CurrentDeliveryID())
	assert.True(t, d.IsAvailable)
	assert.Equal(t, 1, app.upstream.count("complete:del-1"))
}

func TestWebSocket_DriverPositionRoundTrip(t *testing.T) {
	app := setupApp(t)
	cookie := app.login(t, "driver@example.com")

	srv := httptest.NewServer(app.router)
	defer srv.Close()
	ws := app.dial(t, srv, cookie)
	defer ws.Close()

	watch := readUntil(t, ws, notify.EventGeolocationWatch)
	assert.Equal(t, true, watch.Data.(map[string]interface{})["watch"])

	require.NoError(t, ws.WriteJSON(gin.H{"type": "position", "latitude": 6.9271, "longitude": 79.8612}))
	require.Eventually(t, func() bool { return len(app.upstream.pushedLocations()) == 1 }, 2*time.Second, 10*time.Millisecond)
	loc := app.upstream.pushedLocations()[0]
	assert.InDelta(t, 6.9271, loc["latitude"], 1e-9)
	assert.InDelta(t, 79.8612, loc["longitude"], 1e-9)

	require.NoError(t, ws.WriteJSON(gin.H{"type": "position_error", "code": services.GeoPermissionDenied}))
	toast := readUntil(t, ws, notify.EventToast)
	data := toast.Data.(map[string]interface{})
	assert.Equal(t, "error", data["kind"])
	assert.Equal(t, "Location permission denied. Please enable location access.", data["message"])
}

func TestWebSocket_CustomersSeeStorefrontChanges(t *testing.T) {
	app := setupApp(t)
	owner := app.login(t, "owner@example.com")
	customer := app.login(t, "customer@example.com")

	srv := httptest.NewServer(app.router)
	defer srv.Close()
	ws := app.dial(t, srv, customer)
	defer ws.Close()
	require.Eventually(t, func() bool { return app.deps.Hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	w, _ := app.do(t, http.MethodPost, "/api/restaurant/availability/toggle", nil, owner)
	require.Equal(t, http.StatusAccepted, w.Code)

	msg := readUntil(t, ws, notify.EventStorefrontUpdate)
	assert.JSONEq(t, `{"restaurantId":"r1","isAvailable":false}`, mustJSON(t, msg.Data))
}

func mustJSON(t *testing.T, v interface{}) string {
	bs, err := json.Marshal(v)
	require.NoError(t, err)
	return string(bs)
}
