package model

import "strings"

// SignupForm is the customer registration form.
type SignupForm struct {
	Name            string `json:"name" label:"Name" validate:"required,min=2,max=100"`
	MobileNumber    string `json:"mobileNumber" label:"Mobile number" validate:"required,numeric,min=10,max=15"`
	Password        string `json:"password" label:"Password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" label:"Confirm password" validate:"required,eqfield=Password"`
}

// Normalize trims whitespace the user is unlikely to have meant.
func (f *SignupForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.MobileNumber = strings.TrimSpace(f.MobileNumber)
}

// Validate returns an apperr Validation error describing every bad field.
func (f SignupForm) Validate() error { return validateStruct("signup", f) }

// NewPasswordForm is the password reset form reached from the reset link.
type NewPasswordForm struct {
	Password        string `json:"password" label:"Password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" label:"Confirm password" validate:"required,eqfield=Password"`
}

func (f NewPasswordForm) Validate() error { return validateStruct("new password", f) }

// OTPPurpose is the "type" sent with an OTP request.
type OTPPurpose string

const (
	OTPVerify OTPPurpose = "verify"
	OTPReset  OTPPurpose = "reset"
)
