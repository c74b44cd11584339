package apitest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"storefront/internal/pkg/model"
)

var (
	errUserExists = errors.New("user already exists")
	errNoUser     = errors.New("user not found")
)

// OTPTTL is the lifetime of tokens issued by the OTP endpoint.
const OTPTTL = 10 * time.Minute

type customersRouter struct{ a *API }

func (u customersRouter) Register(r gin.IRouter) {
	g := r.Group("/customers")
	{
		g.POST("/signup", u.signup)
		g.POST("/otp", u.otp)
		g.POST("/reset-password", u.resetPassword)
	}
	r.POST("/auth/signout", u.signout)
}

type signupRequest struct {
	Name     string `json:"name"`
	MobileNo string `json:"mobile_no"`
	Password string `json:"password"`
}

func (u customersRouter) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.MobileNo == "" || req.Password == "" {
		badRequest(c, "name, mobile_no and password are required")
		return
	}
	if err := u.a.Store.AddUser(req.Name, req.MobileNo, req.Password); err != nil {
		if errors.Is(err, errUserExists) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "User already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "name": req.Name, "mobile_no": req.MobileNo})
}

type otpRequest struct {
	MobileNo string `json:"mobile_no"`
	Type     string `json:"type"`
}

// otp 签发与手机号绑定的 HS256 令牌，短信发送不在模拟范围内
func (u customersRouter) otp(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.MobileNo == "" {
		badRequest(c, "mobile_no is required")
		return
	}
	if req.Type != string(model.OTPVerify) && req.Type != string(model.OTPReset) {
		badRequest(c, "type must be verify or reset")
		return
	}
	if !u.a.Store.hasUser(req.MobileNo) {
		notFound(c, "User not found")
		return
	}
	token, err := u.a.SignToken(req.MobileNo, model.OTPPurpose(req.Type), OTPTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to sign token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "jwt": token})
}

type resetRequest struct {
	Password string `json:"password"`
	Token    string `json:"token"`
}

func (u customersRouter) resetPassword(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	if len(req.Password) < 8 {
		badRequest(c, "Password must be at least 8 characters long")
		return
	}
	mobile, purpose, err := u.a.parseToken(req.Token)
	if err != nil || purpose != model.OTPReset {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid or expired token"})
		return
	}
	if err := u.a.Store.setPassword(mobile, req.Password); err != nil {
		notFound(c, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated"})
}

func (u customersRouter) signout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SignToken issues the token the OTP endpoint would return for mobile.
func (a *API) SignToken(mobile string, purpose model.OTPPurpose, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": mobile,
		"typ": string(purpose),
		"exp": time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(a.secret)
}

func (a *API) parseToken(raw string) (string, model.OTPPurpose, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", "", err
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return "", "", err
	}
	typ, _ := claims["typ"].(string)
	return sub, model.OTPPurpose(typ), nil
}
