package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cariella/internal/middleware"
	"cariella/internal/model"
	"cariella/pkg/config"
	"cariella/pkg/database"
	"cariella/pkg/session"
	"cariella/pkg/token"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestServer wires a fresh in-memory database, an in-memory session
// store and the production route table for one test.
func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	database.DB = db

	session.Initialize(session.NewMemoryStore(time.Hour), time.Hour)
	token.Initialize(&config.TokenConfig{SigningKey: "test-signing-key", Lifetime: time.Hour})

	e := echo.New()
	e.Use(middleware.LoadSession)

	auth := e.Group("/api/auth")
	auth.POST("/register", Register)
	auth.POST("/login", Login)
	auth.POST("/logout", Logout)
	auth.POST("/verify-phone", VerifyPhone)
	auth.POST("/request-password-reset", RequestPasswordReset)
	auth.POST("/reset-password", ResetPassword)
	auth.GET("/get-locations", GetLocations)

	ownerOnly := []echo.MiddlewareFunc{middleware.RequireAuth, middleware.RequireRole(model.UserTypeCarOwner)}
	vehicles := e.Group("/api/vehicles")
	vehicles.GET("/get-vehicle-catalog", GetVehicleCatalog)
	vehicles.POST("/add", AddVehicle, ownerOnly...)
	vehicles.GET("/get", GetVehicles, ownerOnly...)

	services := e.Group("/api/services", ownerOnly...)
	services.GET("/get-history", GetServiceHistory)

	e.GET("/api/marketplace/get-listings", GetListings)

	return e
}

// doJSON performs a request against the test server and decodes the
// envelope into a generic map.
func doJSON(t *testing.T, e *echo.Echo, method, path, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("%s %s: expected status 200, got %d (%s)", method, path, rec.Code, rec.Body.String())
	}

	var envelope map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("%s %s: decode response: %v (%s)", method, path, err, rec.Body.String())
	}
	return rec, envelope
}

func expectSuccess(t *testing.T, envelope map[string]interface{}) {
	t.Helper()
	if envelope["success"] != true {
		t.Fatalf("expected success, got %v (message: %v)", envelope["success"], envelope["message"])
	}
}

func expectFailure(t *testing.T, envelope map[string]interface{}, message string) {
	t.Helper()
	if envelope["success"] != false {
		t.Fatalf("expected failure, got %v", envelope["success"])
	}
	if envelope["message"] != message {
		t.Fatalf("expected message %q, got %q", message, envelope["message"])
	}
}

// seedUser inserts a user with the given phone, status and password.
func seedUser(t *testing.T, phone, status, password string) model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := model.User{
		Phone:        phone,
		CountryID:    1,
		CityID:       1,
		PasswordHash: string(hash),
		UserType:     model.UserTypeCarOwner,
		Status:       status,
	}
	if err := database.GetDB().Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// setVerification stores a verification code and expiry on a user.
func setVerification(t *testing.T, userID uint, code string, expires time.Time) {
	t.Helper()
	updates := map[string]interface{}{
		"phone_verification_code":    code,
		"phone_verification_expires": expires,
	}
	if err := database.GetDB().Model(&model.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		t.Fatalf("set verification fields: %v", err)
	}
}

// sessionCookie establishes a logged-in session directly in the store.
func sessionCookie(t *testing.T, userID uint, userType string) *http.Cookie {
	t.Helper()

	id := uuid.New().String()
	data := &session.Data{UserID: userID, UserType: userType, LoggedIn: true}
	if err := session.GetStore().Save(context.Background(), id, data); err != nil {
		t.Fatalf("save session: %v", err)
	}
	return &http.Cookie{Name: session.CookieName, Value: id}
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}
