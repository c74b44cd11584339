package main

import (
	"context"
	"errors"
	"time"

	kingpin "github.com/alecthomas/kingpin/v2"

	"storefront/internal/pkg/client/storefront"
	"storefront/internal/pkg/model"
	"storefront/internal/pkg/render"
)

func registerAuthCommands(app *kingpin.Application, cmds map[string]runFunc) {
	signup := app.Command("signup", "Register a customer and request the verification OTP.")
	var form model.SignupForm
	signup.Flag("name", "Full name").Required().StringVar(&form.Name)
	signup.Flag("mobile", "Mobile number").Required().StringVar(&form.MobileNumber)
	signup.Flag("password", "Password").Envar("STOREFRONT_PASSWORD").Required().StringVar(&form.Password)
	signup.Flag("confirm-password", "Password again").Envar("STOREFRONT_CONFIRM_PASSWORD").Required().StringVar(&form.ConfirmPassword)
	cmds[signup.FullCommand()] = func(ctx context.Context, e *env) error {
		res := storefront.Default().Auth.Signup(ctx, form)
		return reportAuth(e, "Account created, OTP sent", res)
	}

	otp := app.Command("otp", "Request an OTP for verification or password reset.")
	otpMobile := otp.Flag("mobile", "Mobile number").Required().String()
	otpType := otp.Flag("type", "verify or reset").Default(string(model.OTPVerify)).Enum(string(model.OTPVerify), string(model.OTPReset))
	cmds[otp.FullCommand()] = func(ctx context.Context, e *env) error {
		res := storefront.Default().Auth.RequestOTP(ctx, *otpMobile, model.OTPPurpose(*otpType))
		return reportAuth(e, "OTP sent", res)
	}

	reset := app.Command("reset-password", "Set a new password with the token from the reset link.")
	resetToken := reset.Flag("token", "Reset token").Envar("STOREFRONT_RESET_TOKEN").String()
	var pw model.NewPasswordForm
	reset.Flag("password", "New password").Envar("STOREFRONT_PASSWORD").Required().StringVar(&pw.Password)
	reset.Flag("confirm-password", "New password again").Envar("STOREFRONT_CONFIRM_PASSWORD").Required().StringVar(&pw.ConfirmPassword)
	cmds[reset.FullCommand()] = func(ctx context.Context, e *env) error {
		res := storefront.Default().Auth.ResetPassword(ctx, pw, *resetToken)
		return reportAuth(e, "Password updated", res)
	}

	signout := app.Command("signout", "End the current session.")
	cmds[signout.FullCommand()] = func(ctx context.Context, e *env) error {
		return reportAuth(e, "Signed out", storefront.Default().Auth.SignOut(ctx))
	}
}

// reportAuth prints res and turns a failed result into an error.
func reportAuth(e *env, success string, res storefront.AuthResult) error {
	if !res.OK {
		if err := e.printer.Message(render.ToneBad, "%s", res.Error); err != nil {
			return err
		}
		if res.Err != nil {
			return res.Err
		}
		return errors.New(res.Error)
	}
	if res.Token == "" {
		return e.printer.Message(render.ToneGood, "%s", success)
	}
	pairs := [][2]string{{"Token", res.Token}}
	if !res.ExpiresAt.IsZero() {
		pairs = append(pairs, [2]string{"Expires", res.ExpiresAt.Local().Format(time.RFC1123)})
	}
	return e.printer.KeyValues(success, pairs...)
}
