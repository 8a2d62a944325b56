package handler

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"cariella/internal/model"
	"cariella/pkg/database"
	"cariella/pkg/logger"
	"cariella/pkg/session"
	"cariella/pkg/token"
	"cariella/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	verificationCodeLifetime = 30 * time.Minute
	minPasswordLength        = 8
)

// dummyHash is compared against when the phone is unknown so that
// lookups and wrong passwords take the same time.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

func Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Phone    string `json:"phone"`
		Country  string `json:"country"`
		City     string `json:"city"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return respondFail(c, "Invalid request.")
	}

	if req.Phone == "" || req.Country == "" || req.City == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_registration")
		return respondFail(c, "Please fill in all required fields.")
	}

	countryID, okCountry := parseID(req.Country)
	cityID, okCity := parseID(req.City)
	if !okCountry || !okCity {
		prometheus.RecordAuthError("invalid_location")
		return respondFail(c, "Invalid country or city selected.")
	}

	if len(req.Password) < minPasswordLength {
		prometheus.RecordAuthError("weak_password")
		return respondFail(c, "Password must be at least 8 characters long.")
	}

	code, err := generateVerificationCode()
	if err != nil {
		log.Error("Failed to generate verification code", zap.Error(err))
		return respondFail(c, "Registration failed. Please try again later.")
	}
	expires := time.Now().UTC().Add(verificationCodeLifetime)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return respondFail(c, "Registration failed. Please try again later.")
	}

	user := model.User{
		Phone:                    req.Phone,
		CountryID:                countryID,
		CityID:                   cityID,
		PasswordHash:             string(hash),
		UserType:                 model.UserTypeCarOwner,
		Status:                   model.UserStatusPending,
		PhoneVerificationCode:    &code,
		PhoneVerificationExpires: &expires,
	}

	// The unique index on phone is the authoritative duplicate check;
	// no separate lookup precedes the insert.
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().WithContext(c.Request().Context()).Create(&user); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			prometheus.RecordAuthError("phone_already_exists")
			return respondFail(c, "A user with this phone number already exists.")
		}
		log.Error("Failed to create user", zap.Error(result.Error))
		prometheus.RecordAuthError("db_error")
		return respondFail(c, databaseErrorMessage)
	}

	// An SMS with the verification code would be sent here; delivery is
	// out of scope and the code never appears in the response.
	log.Info("User registered", zap.Uint("user_id", user.ID))
	return respondOK(c, echo.Map{
		"message":  "Registration successful. Please verify your phone number.",
		"user_id":  user.ID,
		"redirect": fmt.Sprintf("/auth/verify-phone?user_id=%d", user.ID),
	})
}

func VerifyPhone(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.PhoneVerificationCounter.Inc()

	var req struct {
		UserID           string `json:"user_id"`
		VerificationCode string `json:"verification_code"`
	}

	if err := c.Bind(&req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return respondFail(c, "Invalid request.")
	}

	if req.UserID == "" || req.VerificationCode == "" {
		return respondFail(c, "Missing user ID or verification code.")
	}

	userID, ok := parseID(req.UserID)
	if !ok {
		return respondFail(c, "Invalid user ID.")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().WithContext(c.Request().Context()).
		Where("id = ? AND status = ?", userID, model.UserStatusPending).
		First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			prometheus.RecordAuthError("verification_user_not_found")
			return respondFail(c, "Invalid user or account already verified.")
		}
		log.Error("Failed to load user for verification", zap.Error(result.Error))
		return respondFail(c, databaseErrorMessage)
	}

	if user.PhoneVerificationExpires == nil || time.Now().UTC().After(user.PhoneVerificationExpires.UTC()) {
		prometheus.RecordAuthError("code_expired")
		return respondFail(c, "Verification code has expired. Please request a new one.")
	}

	if user.PhoneVerificationCode == nil || *user.PhoneVerificationCode != req.VerificationCode {
		prometheus.RecordAuthError("code_mismatch")
		return respondFail(c, "Invalid verification code.")
	}

	updates := map[string]interface{}{
		"status":                     model.UserStatusActive,
		"phone_verified":             true,
		"phone_verification_code":    nil,
		"phone_verification_expires": nil,
	}
	if err := database.GetDB().WithContext(c.Request().Context()).Model(&user).Updates(updates).Error; err != nil {
		log.Error("Failed to activate user", zap.Error(err))
		return respondFail(c, databaseErrorMessage)
	}

	log.Info("Phone verified", zap.Uint("user_id", user.ID))
	return respondOK(c, echo.Map{
		"message":  "Phone number verified successfully.",
		"redirect": "/auth/login",
	})
}

func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Phone    string `json:"phone"`
		Password string `json:"password"`
		Remember bool   `json:"remember"`
	}

	if err := c.Bind(&req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return respondFail(c, "Invalid request.")
	}

	if req.Phone == "" || req.Password == "" {
		return respondFail(c, "Please enter your phone number and password.")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().WithContext(c.Request().Context()).Where("phone = ?", req.Phone).First(&user)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Error("Failed to load user for login", zap.Error(result.Error))
			return respondFail(c, databaseErrorMessage)
		}
		// Burn a hash comparison so unknown phones cost the same as
		// wrong passwords.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		prometheus.RecordAuthError("invalid_credentials")
		return respondFail(c, "Invalid phone number or password.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		prometheus.RecordAuthError("invalid_credentials")
		return respondFail(c, "Invalid phone number or password.")
	}

	if user.Status != model.UserStatusActive {
		message := "Your account is not active. Please contact support."
		switch user.Status {
		case model.UserStatusPending:
			message = "Please verify your phone number before logging in."
		case model.UserStatusSuspended:
			message = "Your account has been suspended."
		}
		prometheus.RecordAuthError("account_not_active")
		return respondFail(c, message)
	}

	ctx := c.Request().Context()
	sessionID := uuid.New().String()
	data := &session.Data{UserID: user.ID, UserType: user.UserType, LoggedIn: true}
	if err := session.GetStore().Save(ctx, sessionID, data); err != nil {
		log.Error("Failed to save session", zap.Error(err))
		return respondFail(c, "Login failed. Please try again later.")
	}

	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(session.Lifetime().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if req.Remember {
		if remember, err := token.GenerateRememberToken(user.ID); err == nil {
			c.SetCookie(&http.Cookie{
				Name:     token.RememberCookieName,
				Value:    remember,
				Path:     "/",
				MaxAge:   int(token.Lifetime().Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		} else {
			log.Error("Failed to generate remember token", zap.Error(err))
		}
	}

	now := time.Now().UTC()
	if err := database.GetDB().WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		// Login already succeeded; the stale timestamp is not worth
		// failing the request over.
		log.Error("Failed to update last login", zap.Error(err))
	}

	prometheus.IncreaseActiveSessions()
	log.Info("User logged in", zap.Uint("user_id", user.ID), zap.String("user_type", user.UserType))

	return respondOK(c, echo.Map{
		"message":  "Login successful.",
		"redirect": "/dashboard/" + user.UserType,
	})
}

// Logout clears the server-side session and expires both cookies.
// Always succeeds, even without a session.
func Logout(c echo.Context) error {
	ctx := c.Request().Context()

	if cookie, err := c.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		if err := session.GetStore().Delete(ctx, cookie.Value); err != nil {
			logger.FromContext(c).Error("Failed to delete session", zap.Error(err))
		} else {
			prometheus.DecreaseActiveSessions()
		}
	}

	c.SetCookie(&http.Cookie{Name: session.CookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	c.SetCookie(&http.Cookie{Name: token.RememberCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})

	return respondOK(c, echo.Map{
		"message":  "You have been logged out.",
		"redirect": "/auth/login",
	})
}

// RequestPasswordReset always reports success so that responses do not
// reveal which phone numbers are registered.
func RequestPasswordReset(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.PasswordResetCounter.Inc()

	var req struct {
		Phone string `json:"phone"`
	}

	if err := c.Bind(&req); err != nil {
		return respondFail(c, "Invalid request.")
	}
	if req.Phone == "" {
		return respondFail(c, "Please enter your phone number.")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().WithContext(c.Request().Context()).Where("phone = ?", req.Phone).First(&user)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Error("Failed to look up user for password reset", zap.Error(result.Error))
		}
		return respondOK(c, echo.Map{
			"message": "If a user with that phone number exists, a reset code has been sent.",
		})
	}

	code, err := generateVerificationCode()
	if err != nil {
		log.Error("Failed to generate reset code", zap.Error(err))
		return respondFail(c, "Could not process the request. Please try again later.")
	}
	expires := time.Now().UTC().Add(verificationCodeLifetime)

	// The reset code overwrites the verification fields regardless of
	// account status.
	updates := map[string]interface{}{
		"phone_verification_code":    code,
		"phone_verification_expires": expires,
	}
	if err := database.GetDB().WithContext(c.Request().Context()).Model(&user).Updates(updates).Error; err != nil {
		log.Error("Failed to store reset code", zap.Error(err))
		return respondFail(c, databaseErrorMessage)
	}

	// SMS delivery of the code is simulated; nothing sensitive leaves
	// through the response.
	log.Info("Password reset requested", zap.Uint("user_id", user.ID))
	return respondOK(c, echo.Map{
		"message":  "A password reset code has been sent to your phone.",
		"redirect": fmt.Sprintf("/auth/reset-password?user_id=%d", user.ID),
	})
}

func ResetPassword(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.PasswordResetCounter.Inc()

	var req struct {
		UserID           string `json:"user_id"`
		VerificationCode string `json:"verification_code"`
		NewPassword      string `json:"new_password"`
		ConfirmPassword  string `json:"confirm_password"`
	}

	if err := c.Bind(&req); err != nil {
		return respondFail(c, "Invalid request.")
	}

	if req.UserID == "" || req.VerificationCode == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		return respondFail(c, "Please fill in all fields.")
	}

	userID, ok := parseID(req.UserID)
	if !ok {
		return respondFail(c, "Invalid user ID.")
	}
	if req.NewPassword != req.ConfirmPassword {
		return respondFail(c, "Passwords do not match.")
	}
	if len(req.NewPassword) < minPasswordLength {
		return respondFail(c, "Password must be at least 8 characters long.")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().WithContext(c.Request().Context()).First(&user, userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			prometheus.RecordAuthError("code_mismatch")
			return respondFail(c, "Invalid verification code.")
		}
		log.Error("Failed to load user for password reset", zap.Error(result.Error))
		return respondFail(c, databaseErrorMessage)
	}

	if user.PhoneVerificationCode == nil || *user.PhoneVerificationCode != req.VerificationCode {
		prometheus.RecordAuthError("code_mismatch")
		return respondFail(c, "Invalid verification code.")
	}

	if user.PhoneVerificationExpires == nil || time.Now().UTC().After(user.PhoneVerificationExpires.UTC()) {
		prometheus.RecordAuthError("code_expired")
		return respondFail(c, "The reset code has expired.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return respondFail(c, "Could not reset the password. Please try again later.")
	}

	updates := map[string]interface{}{
		"password_hash":              string(hash),
		"phone_verification_code":    nil,
		"phone_verification_expires": nil,
	}
	if err := database.GetDB().WithContext(c.Request().Context()).Model(&user).Updates(updates).Error; err != nil {
		log.Error("Failed to update password", zap.Error(err))
		return respondFail(c, databaseErrorMessage)
	}

	log.Info("Password reset", zap.Uint("user_id", user.ID))
	return respondOK(c, echo.Map{
		"message":  "Your password has been reset successfully.",
		"redirect": "/auth/login",
	})
}

// generateVerificationCode returns a random six digit code as a string.
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
