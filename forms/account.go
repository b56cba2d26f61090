package forms

import "strings"

// LoginForm is the admin sign-in form.
type LoginForm struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// SignupForm is the admin registration form.
type SignupForm struct {
	FullName        string `json:"fullName" form:"fullName" validate:"required"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Password        string `json:"password" form:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" validate:"eqfield=Password"`
}

// OTPRequestForm asks for a password reset code.
type OTPRequestForm struct {
	Email string `json:"email" form:"email" validate:"required,email"`
}

// OTPVerifyForm submits the four digit code.
type OTPVerifyForm struct {
	Email string `json:"email" form:"email" validate:"required,email"`
	OTP   string `json:"otp" form:"otp" validate:"len=4,numeric"`
}

// ResetForm sets the new password once the code is verified.
type ResetForm struct {
	Email           string `json:"email" form:"email" validate:"required,email"`
	NewPassword     string `json:"newPassword" form:"newPassword" validate:"min=8"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" validate:"eqfield=NewPassword"`
}

var accountMessages = map[string]string{
	"email.required":          "Email is required",
	"email.email":             "Please enter a valid email address",
	"password":                "Password is required",
	"password.min":            "Password must be at least 8 characters long",
	"fullName":                "Full name is required",
	"confirmPassword":         "Passwords do not match",
	"otp":                     "Please enter the 4 digit code",
	"newPassword":             "Password must be at least 8 characters long",
	"confirmPassword.eqfield": "Passwords do not match",
}

func ValidateLogin(f LoginForm) Errors {
	errs := Errors{}
	f.Email = strings.TrimSpace(f.Email)
	check(f, errs, accountMessages)
	return errs
}

func ValidateSignup(f SignupForm) Errors {
	errs := Errors{}
	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = strings.TrimSpace(f.Email)
	check(f, errs, accountMessages)
	return errs
}

func ValidateOTPRequest(f OTPRequestForm) Errors {
	errs := Errors{}
	f.Email = strings.TrimSpace(f.Email)
	check(f, errs, accountMessages)
	return errs
}

func ValidateOTPVerify(f OTPVerifyForm) Errors {
	errs := Errors{}
	f.Email = strings.TrimSpace(f.Email)
	check(f, errs, accountMessages)
	return errs
}

func ValidateReset(f ResetForm) Errors {
	errs := Errors{}
	f.Email = strings.TrimSpace(f.Email)
	check(f, errs, accountMessages)
	return errs
}
