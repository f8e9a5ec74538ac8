package auth

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"claims-backend/internal/shared/server/respond"
	"claims-backend/internal/shared/telemetry"
)

// ErrOTPRejected is returned when the identity provider reports a
// non-success outcome.
var ErrOTPRejected = errors.New("otp rejected")

// OTPService delegates login entirely to an external OTP identity provider:
// one endpoint sends the code, one verifies it and returns an opaque user id.
type OTPService struct {
	baseURL    string
	httpClient *http.Client
}

// NewOTPService builds an OTPService against the given provider base URL.
// The upstream provider runs on a self-signed certificate, hence the
// insecure TLS switch.
func NewOTPService(baseURL string, insecureTLS bool, timeout time.Duration) *OTPService {
	transport := http.DefaultTransport
	if insecureTLS {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &OTPService{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// RegisterRoutes attaches the login routes.
func (s *OTPService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", s.login)
	rg.POST("/verify-otp", s.verifyOTP)
}

type otpResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		User struct {
			ID string `json:"_id"`
		} `json:"user"`
	} `json:"data"`
}

func (s *OTPService) login(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	phone := strings.TrimSpace(c.PostForm("phone"))
	if name == "" || phone == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "name and phone are required", nil)
		return
	}

	if err := s.SendOTP(c.Request.Context(), phone); err != nil {
		respond.Error(c, http.StatusBadGateway, "otp_send_failed", err.Error(), nil)
		return
	}

	respond.OK(c, gin.H{"otpSent": true})
}

func (s *OTPService) verifyOTP(c *gin.Context) {
	phone := strings.TrimSpace(c.PostForm("phone"))
	otp := strings.TrimSpace(c.PostForm("otp"))
	if phone == "" || otp == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "phone and otp are required", nil)
		return
	}

	userID, err := s.VerifyOTP(c.Request.Context(), phone, otp)
	if err != nil {
		status := http.StatusBadGateway
		code := "otp_verify_failed"
		if errors.Is(err, ErrOTPRejected) {
			status = http.StatusUnauthorized
			code = "otp_rejected"
		}
		respond.Error(c, status, code, err.Error(), nil)
		return
	}

	respond.OK(c, gin.H{"userId": userID})
}

// SendOTP asks the provider to send a one-time code to the phone number.
func (s *OTPService) SendOTP(ctx context.Context, phone string) error {
	var parsed otpResponse
	if err := s.post(ctx, "/userauth/sendOtp", map[string]any{"contactNumber": phone}, &parsed); err != nil {
		return err
	}
	if !parsed.Success {
		return fmt.Errorf("%w: %s", ErrOTPRejected, parsed.Message)
	}
	telemetry.Info("auth.otp_sent", map[string]any{"phone": phone})
	return nil
}

// VerifyOTP checks the one-time code and returns the provider's opaque user
// id on success. The provider expects the code as a number.
func (s *OTPService) VerifyOTP(ctx context.Context, phone, otp string) (string, error) {
	code, err := strconv.Atoi(otp)
	if err != nil {
		return "", fmt.Errorf("%w: otp must be numeric", ErrOTPRejected)
	}

	var parsed otpResponse
	if err := s.post(ctx, "/userauth/verifyOtp", map[string]any{"contactNumber": phone, "otp": code}, &parsed); err != nil {
		return "", err
	}
	if !parsed.Success {
		return "", fmt.Errorf("%w: %s", ErrOTPRejected, parsed.Message)
	}
	if parsed.Data.User.ID == "" {
		return "", fmt.Errorf("identity provider returned no user id")
	}
	telemetry.Info("auth.otp_verified", map[string]any{"phone": phone, "user_id": parsed.Data.User.ID})
	return parsed.Data.User.ID, nil
}

func (s *OTPService) post(ctx context.Context, path string, body map[string]any, out *otpResponse) error {
	if s.baseURL == "" {
		return fmt.Errorf("OTP provider not configured")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("otp provider request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("otp provider response: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("otp provider response parse: %w", err)
	}
	return nil
}
