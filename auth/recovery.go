package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"agroadmin/apiclient"
	"agroadmin/audit"
	"agroadmin/forms"
)

// Recovery steps, in the order the flow walks through them.
const (
	StepOTP    = "otp"
	StepReset  = "reset"
	StepDone   = "done"
	msgBadOTP  = "Invalid OTP. Please try again."
	msgNoReset = "Failed to reset password. Please try again."
)

// ErrTooSoon is returned when a new code is requested inside the resend cooldown.
var ErrTooSoon = errors.New("please wait before requesting another code")

// ErrNotVerified is returned when a reset is attempted before the code was accepted.
var ErrNotVerified = errors.New("verify the code sent to your email first")

type attempt struct {
	sentAt   time.Time
	verified bool
}

// recovery tracks where each email is in the reset flow.
type recovery struct {
	mu       sync.Mutex
	attempts map[string]*attempt
	cooldown time.Duration
	ttl      time.Duration
	now      func() time.Time
}

func newRecovery(cooldown, ttl time.Duration) *recovery {
	return &recovery{attempts: make(map[string]*attempt), cooldown: cooldown, ttl: ttl, now: time.Now}
}

func recoveryKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// begin reserves a send slot for email, failing inside the cooldown.
func (r *recovery) begin(email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for k, a := range r.attempts {
		if now.Sub(a.sentAt) > r.ttl {
			delete(r.attempts, k)
		}
	}
	if a, ok := r.attempts[recoveryKey(email)]; ok && now.Sub(a.sentAt) < r.cooldown {
		return ErrTooSoon
	}
	r.attempts[recoveryKey(email)] = &attempt{sentAt: now}
	return nil
}

// abandon forgets a send that never reached the store.
func (r *recovery) abandon(email string) {
	r.mu.Lock()
	delete(r.attempts, recoveryKey(email))
	r.mu.Unlock()
}

func (r *recovery) verify(email string) {
	r.mu.Lock()
	if a, ok := r.attempts[recoveryKey(email)]; ok {
		a.verified = true
	}
	r.mu.Unlock()
}

func (r *recovery) verified(email string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[recoveryKey(email)]
	return ok && a.verified && r.now().Sub(a.sentAt) <= r.ttl
}

func (r *recovery) finish(email string) {
	r.abandon(email)
}

// outcome is the {success, message} body the recovery endpoints answer with.
type outcome struct {
	Success flexBool `json:"success"`
	Message string   `json:"message"`
}

func readOutcome(raw json.RawMessage) outcome {
	var o outcome
	if err := json.Unmarshal(raw, &o); err != nil {
		log.Printf("[auth] unexpected recovery response: %v", err)
	}
	return o
}

func rejected(msg, fallback string) *apiclient.Error {
	if msg == "" {
		msg = fallback
	}
	return &apiclient.Error{Kind: apiclient.KindValidation, Status: http.StatusBadRequest, Message: msg}
}

// RequestOTP asks the store to email a reset code.
func (s *Service) RequestOTP(ctx context.Context, f forms.OTPRequestForm) (string, forms.Errors, error) {
	if errs := forms.ValidateOTPRequest(f); !errs.Valid() {
		return "", errs, nil
	}
	email := strings.TrimSpace(f.Email)
	if err := s.recovery.begin(email); err != nil {
		return "", nil, &apiclient.Error{Kind: apiclient.KindValidation, Status: http.StatusTooManyRequests, Message: "Please wait before requesting another code", Err: err}
	}
	raw, err := s.api.Public(ctx, http.MethodPost, otpPath, map[string]string{"Email": email}, apiclient.WithTimeout(s.resetTimeout))
	if err != nil {
		s.recovery.abandon(email)
		log.Printf("[auth] otp request %s: %v", email, err)
		return "", nil, err
	}
	o := readOutcome(raw)
	msg := o.Message
	if msg == "" {
		msg = "OTP sent to your email"
	}
	return msg, nil, nil
}

// VerifyOTP checks the code and unlocks the reset step for email.
func (s *Service) VerifyOTP(ctx context.Context, f forms.OTPVerifyForm) (string, forms.Errors, error) {
	if errs := forms.ValidateOTPVerify(f); !errs.Valid() {
		return "", errs, nil
	}
	email := strings.TrimSpace(f.Email)
	body := map[string]string{"Email": email, "userOtp": f.OTP}
	raw, err := s.api.Public(ctx, http.MethodPost, verifyPath, body, apiclient.WithTimeout(s.resetTimeout))
	if err != nil {
		log.Printf("[auth] verify otp %s: %v", email, err)
		ae := apiclient.As(err)
		if ae.Kind == apiclient.KindValidation || ae.Kind == apiclient.KindAuth {
			return "", nil, rejected(ae.Message, msgBadOTP)
		}
		return "", nil, err
	}
	o := readOutcome(raw)
	if !o.Success {
		return "", nil, rejected(o.Message, msgBadOTP)
	}
	s.recovery.verify(email)
	return o.Message, nil, nil
}

// ResetPassword sets a new password for an email whose code was verified.
func (s *Service) ResetPassword(ctx context.Context, f forms.ResetForm) (string, forms.Errors, error) {
	if errs := forms.ValidateReset(f); !errs.Valid() {
		return "", errs, nil
	}
	email := strings.TrimSpace(f.Email)
	if !s.recovery.verified(email) {
		return "", nil, &apiclient.Error{Kind: apiclient.KindValidation, Status: http.StatusBadRequest, Message: "Please verify the code sent to your email first", Err: ErrNotVerified}
	}
	body := map[string]string{"Email": email, "newPassword": f.NewPassword}
	raw, err := s.api.Public(ctx, http.MethodPost, resetPath, body, apiclient.WithTimeout(s.resetTimeout))
	if err != nil {
		log.Printf("[auth] reset password %s: %v", email, err)
		return "", nil, err
	}
	o := readOutcome(raw)
	if !o.Success {
		return "", nil, rejected(o.Message, msgNoReset)
	}
	s.recovery.finish(email)
	s.audit.Record(ctx, audit.Entry{Action: audit.PasswordReset, Entity: "user", EntityID: email})
	msg := o.Message
	if msg == "" {
		msg = "Password reset successful"
	}
	return msg, nil, nil
}
