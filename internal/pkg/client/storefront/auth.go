package storefront

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront/internal/pkg/common/apperr"
	"storefront/internal/pkg/model"
)

const msgUserExists = "User already exists"

// AuthResult is what the auth flows report back to a form: pass/fail, the
// token when one was issued, and a message fit for display.
type AuthResult struct {
	OK    bool
	Token string
	// Error is the user facing message; empty when OK.
	Error string
	// Err keeps the typed error for callers that branch on apperr.Kind.
	Err error
	// ExpiresAt is read from the token's exp claim without verifying the
	// signature; zero when absent.
	ExpiresAt time.Time
}

func failed(err error) AuthResult {
	return AuthResult{Error: apperr.Message(err), Err: err}
}

func issued(token string) AuthResult {
	return AuthResult{OK: true, Token: token, ExpiresAt: tokenExpiry(token)}
}

// tokenExpiry returns the exp claim of a JWT. The signature is not checked,
// the server is the authority on validity.
func tokenExpiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// AuthAPI is the customer authentication boundary.
type AuthAPI struct{ c *Client }

// Signup registers a customer and requests the verification OTP. On success
// the result carries the OTP session token. Form errors are reported without
// calling the API.
func (a *AuthAPI) Signup(ctx context.Context, form model.SignupForm) AuthResult {
	form.Normalize()
	if err := form.Validate(); err != nil {
		return failed(err)
	}
	body := map[string]string{
		"name":      form.Name,
		"mobile_no": form.MobileNumber,
		"password":  form.Password,
	}
	var created struct {
		MobileNo string `json:"mobile_no"`
	}
	if err := a.c.doJSON(ctx, "signup", http.MethodPost, "/api/customers/signup", body, &created); err != nil {
		if apperr.IsConflict(err) {
			return failed(apperr.NewConflict("signup", msgUserExists))
		}
		return failed(err)
	}
	mobile := created.MobileNo
	if mobile == "" {
		mobile = form.MobileNumber
	}
	return a.RequestOTP(ctx, mobile, model.OTPVerify)
}

// RequestOTP sends an OTP to mobile for the given purpose and returns the
// session token the OTP is bound to.
func (a *AuthAPI) RequestOTP(ctx context.Context, mobile string, purpose model.OTPPurpose) AuthResult {
	if mobile == "" {
		return failed(validationError("request otp", "MobileNumber", "Mobile number is required"))
	}
	body := map[string]string{"mobile_no": mobile, "type": string(purpose)}
	var resp struct {
		JWT string `json:"jwt"`
	}
	if err := a.c.doJSON(ctx, "request otp", http.MethodPost, "/api/customers/otp", body, &resp); err != nil {
		return failed(err)
	}
	return issued(resp.JWT)
}

// ResetPassword sets a new password using the token from the reset link.
func (a *AuthAPI) ResetPassword(ctx context.Context, form model.NewPasswordForm, token string) AuthResult {
	if err := form.Validate(); err != nil {
		return failed(err)
	}
	if token == "" {
		return failed(validationError("reset password", "Token", "Reset link is invalid or expired"))
	}
	body := map[string]string{"password": form.Password, "token": token}
	if err := a.c.doJSON(ctx, "reset password", http.MethodPost, "/api/customers/reset-password", body, nil); err != nil {
		return failed(err)
	}
	return AuthResult{OK: true}
}

// SignOut ends the server session and drops the client's bearer token.
func (a *AuthAPI) SignOut(ctx context.Context) AuthResult {
	err := a.c.doJSON(ctx, "signout", http.MethodPost, "/api/auth/signout", nil, nil)
	a.c.SetToken("")
	if err != nil {
		return failed(err)
	}
	return AuthResult{OK: true}
}
