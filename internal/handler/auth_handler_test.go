package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"cariella/internal/model"
	"cariella/pkg/database"
	"cariella/pkg/session"
	"cariella/pkg/token"
)

func TestRegisterValidation(t *testing.T) {
	e := newTestServer(t)

	_, env := doJSON(t, e, http.MethodPost, "/api/auth/register", `{"phone":"+1000"}`)
	expectFailure(t, env, "Please fill in all required fields.")

	_, env = doJSON(t, e, http.MethodPost, "/api/auth/register",
		`{"phone":"+1000","country":"abc","city":"5","password":"longenough1"}`)
	expectFailure(t, env, "Invalid country or city selected.")

	_, env = doJSON(t, e, http.MethodPost, "/api/auth/register",
		`{"phone":"+1000","country":"1","city":"5","password":"short"}`)
	expectFailure(t, env, "Password must be at least 8 characters long.")
}

func TestRegisterCreatesPendingUser(t *testing.T) {
	e := newTestServer(t)

	_, env := doJSON(t, e, http.MethodPost, "/api/auth/register",
		`{"phone":"+1000","country":"1","city":"5","password":"longenough1"}`)
	expectSuccess(t, env)
	if env["user_id"] == nil {
		t.Fatalf("expected user_id in response")
	}

	var user model.User
	if err := database.GetDB().Where("phone = ?", "+1000").First(&user).Error; err != nil {
		t.Fatalf("load registered user: %v", err)
	}
	if user.Status != model.UserStatusPending {
		t.Fatalf("expected pending status, got %s", user.Status)
	}
	if user.PhoneVerificationCode == nil || len(*user.PhoneVerificationCode) != 6 {
		t.Fatalf("expected a six digit verification code, got %v", user.PhoneVerificationCode)
	}
	if user.PhoneVerificationExpires == nil || time.Until(*user.PhoneVerificationExpires) <= 0 {
		t.Fatalf("expected a future code expiry, got %v", user.PhoneVerificationExpires)
	}
}

func TestRegisterDuplicatePhone(t *testing.T) {
	e := newTestServer(t)

	body := `{"phone":"+1000","country":"1","city":"5","password":"longenough1"}`
	_, env := doJSON(t, e, http.MethodPost, "/api/auth/register", body)
	expectSuccess(t, env)

	_, env = doJSON(t, e, http.MethodPost, "/api/auth/register", body)
	expectFailure(t, env, "A user with this phone number already exists.")
}

func TestVerifyPhone(t *testing.T) {
	e := newTestServer(t)

	user := seedUser(t, "+1000", model.UserStatusPending, "longenough1")
	setVerification(t, user.ID, "123456", time.Now().UTC().Add(30*time.Minute))

	_, env := doJSON(t, e, http.MethodPost, "/api/auth/verify-phone",
		fmt.Sprintf(`{"user_id":"%d","verification_code":"654321"}`, user.ID))
	expectFailure(t, env, "Invalid verification code.")

	_, env = doJSON(t, e, http.MethodPost, "/api/auth/verify-phone",
		fmt.Sprintf(`{"user_id":"%d","verification_code":"123456"}`, user.ID))
	expectSuccess(t, env)

	var verified model.User
	if err := database.GetDB().First(&verified, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if verified.Status != model.UserStatusActive {
		t.Fatalf("expected active status, got %s", verified.Status)
	}
	if !verified.PhoneVerified {
		t.Fatalf("expected phone_verified to be set")
	}
	if verified.PhoneVerificationCode != nil || verified.PhoneVerificationExpires != nil {
		t.Fatalf("expected verification fields cleared")
	}

	// The account is no longer pending, so a second attempt fails.
	_, env = doJSON(t, e, http.MethodPost, "/api/auth/verify-phone",
		fmt.Sprintf(`{"user_id":"%d","verification_code":"123456"}`, user.ID))
	expectFailure(t, env, "Invalid user or account already verified.")
}

func TestVerifyPhoneExpiredCode(t *testing.T) {
	e := newTestServer(t)

	user := seedUser(t, "+1000", model.UserStatusPending, "longenough1")
	setVerification(t, user.ID, "123456", time.Now().UTC().Add(-time.Minute))

	_, env := doJSON(t, e, http.MethodPost, "/api/auth/verify-phone",
		fmt.Sprintf(`{"user_id":"%d","verification_code":"123456"}`, user.ID))
	expectFailure(t, env, "Verification code has expired. Please request a new one.")
}

func TestVerifyPhoneUnknownUser(t *testing.T) {
	e := newTestServer(t)

	_, env := doJSON(t, e, http.MethodPost, "/api/auth/verify-phone",
		`{"user_id":"9999","verification_code":"123456"}`)
	expectFailure(t, env, "Invalid user or account already verified.")
}

func TestLoginInvalidCredentials(t *testing.T) {
	e := newTestServer(t)

	seedUser(t, "+1000", model.UserStatusActive, "longenough1")

	// Unknown phone and wrong password must be indistinguishable.
	_, env := doJSON(t, e, http.MethodPost, "/api/auth/login",
		`{"phone":"+9999","password":"longenough1"}`)
	expectFailure(t, env, "Invalid phone number or password.")

	_, env = doJSON(t, e, http.MethodPost, "/api/auth/login",
		`{"phone":"+1000","password":"wrongpassword"}`)
	expectFailure(t, env, "Invalid phone number or password.")
}

func TestLoginAccountNotActive(t *testing.T) {
	e := newTestServer(t)

	seedUser(t, "+1000", model.UserStatusPending, "longenough1")
	seedUser(t, "+2000", model.UserStatusSuspended, "longenough1")

	_, env := doJSON(t, e, http.MethodPost, "/api/auth/login",
		`{"phone":"+1000","password":"longenough1"}`)
	expectFailure(t, env, "Please verify your phone number before logging in.")

	_, env = doJSON(t, e, http.MethodPost, "/api/auth/login",
		`{"phone":"+2000","password":"longenough1"}`)
	expectFailure(t, env, "Your account has been suspended.")
}

func TestLoginEstablishesSession(t *testing.T) {
	e := newTestServer(t)

	user := seedUser(t, "+1000", model.UserStatusActive, "longenough1")

	rec, env := doJSON(t, e, http.MethodPost, "/api/auth/login",
		`{"phone":"+1000","password":"longenough1"}`)
	expectSuccess(t, env)
	if env["redirect"] != "/dashboard/car_owner" {
		t.Fatalf("expected car owner dashboard redirect, got %v", env["redirect"])
	}

	cookie := findCookie(rec, session.CookieName)
	if cookie == nil || cookie.Value == "" {
		t.Fatalf("expected session cookie to be set")
	}

	// The session cookie authenticates follow-up requests.
	_, env = doJSON(t, e, http.MethodGet, "/api/vehicles/get", "", cookie)
	expectSuccess(t, env)

	var loggedIn model.User
	if err := database.GetDB().First(&loggedIn, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if loggedIn.LastLogin == nil {
		t.Fatalf("expected last_login to be updated")
	}
}

func TestLoginRememberMeRestoresSession(t *testing.T) {
	e := newTestServer(t)

	seedUser(t, "+1000", model.UserStatusActive, "longenough1")

	rec, env := doJSON(t, e, http.MethodPost, "/api/auth/login",
		`{"phone":"+1000","password":"longenough1","remember":true}`)
	expectSuccess(t, env)

	remember := findCookie(rec, token.RememberCookieName)
	if remember == nil || remember.Value == "" {
		t.Fatalf("expected remember cookie to be set")
	}

	// With only the remember cookie, a fresh session is established.
	rec, env = doJSON(t, e, http.MethodGet, "/api/vehicles/get", "", remember)
	expectSuccess(t, env)
	if restored := findCookie(rec, session.CookieName); restored == nil || restored.Value == "" {
		t.Fatalf("expected a fresh session cookie")
	}
}

func TestLogoutEndsSession(t *testing.T) {
	e := newTestServer(t)

	user := seedUser(t, "+1000", model.UserStatusActive, "longenough1")
	cookie := sessionCookie(t, user.ID, user.UserType)

	_, env := doJSON(t, e, http.MethodPost, "/api/auth/logout", "{}", cookie)
	expectSuccess(t, env)

	_, env = doJSON(t, e, http.MethodGet, "/api/vehicles/get", "", cookie)
	expectFailure(t, env, "Authentication required. Please log in.")
}

func TestRequestPasswordResetAlwaysSucceeds(t *testing.T) {
	e := newTestServer(t)

	user := seedUser(t, "+1000", model.UserStatusActive, "longenough1")

	_, env := doJSON(t, e, http.MethodPost, "/api/auth/request-password-reset",
		`{"phone":"+9999"}`)
	expectSuccess(t, env)

	_, env = doJSON(t, e, http.MethodPost, "/api/auth/request-password-reset",
		`{"phone":"+1000"}`)
	expectSuccess(t, env)

	var reloaded model.User
	if err := database.GetDB().First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.PhoneVerificationCode == nil || len(*reloaded.PhoneVerificationCode) != 6 {
		t.Fatalf("expected a stored reset code, got %v", reloaded.PhoneVerificationCode)
	}
	if reloaded.PhoneVerificationExpires == nil {
		t.Fatalf("expected a stored reset expiry")
	}
}

func TestResetPasswordValidation(t *testing.T) {
	e := newTestServer(t)

	user := seedUser(t, "+1000", model.UserStatusActive, "longenough1")
	setVerification(t, user.ID, "123456", time.Now().UTC().Add(30*time.Minute))

	// Password pair validation applies regardless of code validity.
	_, env := doJSON(t, e, http.MethodPost, "/api/auth/reset-password",
		fmt.Sprintf(`{"user_id":"%d","verification_code":"000000","new_password":"longenough1","confirm_password":"different1"}`, user.ID))
	expectFailure(t, env, "Passwords do not match.")

	_, env = doJSON(t, e, http.MethodPost, "/api/auth/reset-password",
		fmt.Sprintf(`{"user_id":"%d","verification_code":"123456","new_password":"short","confirm_password":"short"}`, user.ID))
	expectFailure(t, env, "Password must be at least 8 characters long.")

	_, env = doJSON(t, e, http.MethodPost, "/api/auth/reset-password",
		fmt.Sprintf(`{"user_id":"%d","verification_code":"000000","new_password":"longenough2","confirm_password":"longenough2"}`, user.ID))
	expectFailure(t, env, "Invalid verification code.")
}

func TestResetPasswordExpiredCode(t *testing.T) {
	e := newTestServer(t)

	user := seedUser(t, "+1000", model.UserStatusActive, "longenough1")
	setVerification(t, user.ID, "123456", time.Now().UTC().Add(-time.Minute))

	_, env := doJSON(t, e, http.MethodPost, "/api/auth/reset-password",
		fmt.Sprintf(`{"user_id":"%d","verification_code":"123456","new_password":"longenough2","confirm_password":"longenough2"}`, user.ID))
	expectFailure(t, env, "The reset code has expired.")
}

func TestResetPasswordChangesCredentials(t *testing.T) {
	e := newTestServer(t)

	user := seedUser(t, "+1000", model.UserStatusActive, "longenough1")
	setVerification(t, user.ID, "123456", time.Now().UTC().Add(30*time.Minute))

	_, env := doJSON(t, e, http.MethodPost, "/api/auth/reset-password",
		fmt.Sprintf(`{"user_id":"%d","verification_code":"123456","new_password":"longenough2","confirm_password":"longenough2"}`, user.ID))
	expectSuccess(t, env)

	var reloaded model.User
	if err := database.GetDB().First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if reloaded.PhoneVerificationCode != nil || reloaded.PhoneVerificationExpires != nil {
		t.Fatalf("expected verification fields cleared after reset")
	}

	_, env = doJSON(t, e, http.MethodPost, "/api/auth/login",
		`{"phone":"+1000","password":"longenough1"}`)
	expectFailure(t, env, "Invalid phone number or password.")

	_, env = doJSON(t, e, http.MethodPost, "/api/auth/login",
		`{"phone":"+1000","password":"longenough2"}`)
	expectSuccess(t, env)
}

func TestEndToEndRegistrationFlow(t *testing.T) {
	e := newTestServer(t)

	_, env := doJSON(t, e, http.MethodPost, "/api/auth/register",
		`{"phone":"+1000","country":"1","city":"5","password":"longenough1"}`)
	expectSuccess(t, env)
	userID := uint(env["user_id"].(float64))

	var user model.User
	if err := database.GetDB().First(&user, userID).Error; err != nil {
		t.Fatalf("load registered user: %v", err)
	}
	code := *user.PhoneVerificationCode

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, env = doJSON(t, e, http.MethodPost, "/api/auth/verify-phone",
		fmt.Sprintf(`{"user_id":"%d","verification_code":"%s"}`, userID, wrong))
	expectFailure(t, env, "Invalid verification code.")

	_, env = doJSON(t, e, http.MethodPost, "/api/auth/verify-phone",
		fmt.Sprintf(`{"user_id":"%d","verification_code":"%s"}`, userID, code))
	expectSuccess(t, env)

	rec, env := doJSON(t, e, http.MethodPost, "/api/auth/login",
		`{"phone":"+1000","password":"longenough1"}`)
	expectSuccess(t, env)
	if cookie := findCookie(rec, session.CookieName); cookie == nil {
		t.Fatalf("expected session cookie after login")
	}
}
