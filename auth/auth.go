// Package auth covers everything before and around an admin session: login, signup, the
// password recovery flow, the header profile and logout.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"agroadmin/apiclient"
	"agroadmin/audit"
	"agroadmin/forms"
	"agroadmin/session"
)

const (
	loginPath   = "/api/auth/login"
	signupPath  = "/api/auth/adminSignup"
	otpPath     = "/api/auth/otp-for-password"
	verifyPath  = "/api/auth/verify-email"
	resetPath   = "/api/auth/reset-password"
	profilePath = "/api/auth/admin"
)

// Redirect targets handed back after login.
const (
	AdminHome = "/admin-dashboard"
	StoreHome = "/"
)

type Service struct {
	api          *apiclient.Client
	sessions     *session.Manager
	audit        audit.Recorder
	resetTimeout time.Duration
	recovery     *recovery
}

func NewService(api *apiclient.Client, sessions *session.Manager, rec audit.Recorder, resetTimeout time.Duration) *Service {
	if resetTimeout <= 0 {
		resetTimeout = 10 * time.Second
	}
	return &Service{
		api:          api,
		sessions:     sessions,
		audit:        rec,
		resetTimeout: resetTimeout,
		recovery:     newRecovery(30*time.Second, 15*time.Minute),
	}
}

// flexBool accepts true, "true" and their false counterparts.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.Trim(strings.ToLower(string(data)), `"`) {
	case "true", "1":
		*b = true
	default:
		*b = false
	}
	return nil
}

type loginResponse struct {
	Token   string   `json:"token"`
	UserID  string   `json:"userId"`
	IsAdmin flexBool `json:"isAdmin"`
}

// LoginResult is what the browser keeps after signing in.
type LoginResult struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	IsAdmin  bool   `json:"isAdmin"`
	Redirect string `json:"redirect"`
}

// loginError rewrites a failed login call with the login page's own messages.
func loginError(err error) *apiclient.Error {
	ae := apiclient.As(err)
	out := *ae
	switch {
	case ae.Kind == apiclient.KindNetwork && !errors.Is(ae.Err, context.DeadlineExceeded):
		out.Message = "Cannot connect to server. Please check if the backend is running."
	case ae.Status == http.StatusBadRequest && (ae.Message == "" || ae.Message == http.StatusText(http.StatusBadRequest)):
		out.Message = "Bad request - please check your input"
	case ae.Status == http.StatusUnauthorized || ae.Status == http.StatusForbidden:
		if ae.Message == "" || ae.Message == "Your session has expired. Please log in again." {
			out.Message = "Invalid credentials"
		}
	case ae.Status == http.StatusNotFound:
		out.Message = "Login endpoint not found - check your backend URL"
	case ae.Status == http.StatusBadGateway || ae.Status == http.StatusServiceUnavailable:
		out.Message = "Backend server is temporarily unavailable"
	case ae.Status == http.StatusInternalServerError:
		out.Message = "Internal server error"
	}
	// a rejected login is a credentials problem, not an expired session
	if out.Kind == apiclient.KindAuth {
		out.Kind = apiclient.KindValidation
	}
	return &out
}

// Login signs in upstream and opens a session. Some store deployments only accept
// capitalised field names, so a request rejected as malformed (400 or 422) is retried once
// with those. Credential failures are never retried.
func (s *Service) Login(ctx context.Context, f forms.LoginForm) (*LoginResult, forms.Errors, error) {
	if errs := forms.ValidateLogin(f); !errs.Valid() {
		return nil, errs, nil
	}
	email := strings.TrimSpace(f.Email)

	raw, err := s.api.Public(ctx, http.MethodPost, loginPath, map[string]string{"email": email, "password": f.Password})
	if ae := apiclient.As(err); ae != nil && (ae.Status == http.StatusBadRequest || ae.Status == http.StatusUnprocessableEntity) {
		log.Printf("[auth] login with lowercase fields rejected (%d), retrying", ae.Status)
		raw, err = s.api.Public(ctx, http.MethodPost, loginPath, map[string]string{"Email": email, "Password": f.Password})
	}
	if err != nil {
		log.Printf("[auth] login %s: %v", email, err)
		return nil, nil, loginError(err)
	}

	var resp loginResponse
	if err := json.Unmarshal(raw, &resp); err != nil || resp.Token == "" {
		return nil, nil, &apiclient.Error{Kind: apiclient.KindDecode, Message: "Unexpected response from server", Err: err}
	}

	sess, signed, err := s.sessions.Create(ctx, resp.Token, resp.UserID, email, bool(resp.IsAdmin))
	if err != nil {
		return nil, nil, fmt.Errorf("create session: %w", err)
	}
	s.audit.Record(ctx, audit.Entry{Action: audit.LoggedIn, Entity: "session", EntityID: sess.ID, UserID: resp.UserID})

	res := &LoginResult{Token: signed, UserID: resp.UserID, IsAdmin: bool(resp.IsAdmin), Redirect: StoreHome}
	if res.IsAdmin {
		res.Redirect = AdminHome
	}
	return res, nil, nil
}

// Signup registers a new admin account. The store expects capitalised field names here.
func (s *Service) Signup(ctx context.Context, f forms.SignupForm) (forms.Errors, error) {
	if errs := forms.ValidateSignup(f); !errs.Valid() {
		return errs, nil
	}
	body := map[string]string{
		"FullName": strings.TrimSpace(f.FullName),
		"Email":    strings.TrimSpace(f.Email),
		"Password": f.Password,
	}
	if _, err := s.api.Public(ctx, http.MethodPost, signupPath, body); err != nil {
		log.Printf("[auth] signup %s: %v", body["Email"], err)
		ae := apiclient.As(err)
		if ae.Status == http.StatusBadRequest && ae.Message == http.StatusText(http.StatusBadRequest) {
			out := *ae
			out.Message = "User already exists or invalid data"
			return nil, &out
		}
		return nil, err
	}
	return nil, nil
}

// Profile returns the display name of the signed-in admin.
func (s *Service) Profile(ctx context.Context, sess *session.Session) (string, error) {
	raw, err := s.api.Do(ctx, sess, http.MethodGet, profilePath, nil)
	if err != nil {
		log.Printf("[auth] profile: %v", err)
		return "", err
	}
	var body struct {
		User struct {
			FullName string `json:"FullName"`
			Name     string `json:"fullName"`
		} `json:"user"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", &apiclient.Error{Kind: apiclient.KindDecode, Message: "Unexpected response from server", Err: err}
	}
	if body.User.FullName != "" {
		return body.User.FullName, nil
	}
	return body.User.Name, nil
}

// Logout ends the session and drops every page's state for it.
func (s *Service) Logout(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return errors.New("no session")
	}
	if err := s.sessions.Destroy(ctx, sess.ID); err != nil {
		return err
	}
	s.audit.Record(ctx, audit.Entry{Action: audit.LoggedOut, Entity: "session", EntityID: sess.ID, UserID: sess.UserID})
	return nil
}
