package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeProvider stands in for the upstream identity provider.
func fakeProvider(t *testing.T, handler http.HandlerFunc) *OTPService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOTPService(srv.URL, false, 5*time.Second)
}

func TestSendOTPSuccess(t *testing.T) {
	var gotBody map[string]any
	svc := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userauth/sendOtp" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	})

	if err := svc.SendOTP(context.Background(), "9876543210"); err != nil {
		t.Fatalf("send otp: %v", err)
	}
	if gotBody["contactNumber"] != "9876543210" {
		t.Fatalf("contactNumber not forwarded: %v", gotBody)
	}
}

func TestSendOTPRejected(t *testing.T) {
	svc := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "unknown number"})
	})

	err := svc.SendOTP(context.Background(), "000")
	if !errors.Is(err, ErrOTPRejected) {
		t.Fatalf("expected ErrOTPRejected, got %v", err)
	}
}

func TestVerifyOTPReturnsUserID(t *testing.T) {
	var gotBody map[string]any
	svc := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userauth/verifyOtp" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"user": map[string]any{"_id": "64f1c0ffee"}},
		})
	})

	userID, err := svc.VerifyOTP(context.Background(), "9876543210", "1234")
	if err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	if userID != "64f1c0ffee" {
		t.Fatalf("unexpected user id %q", userID)
	}
	// The provider expects the code as a number, not a string.
	if _, ok := gotBody["otp"].(float64); !ok {
		t.Fatalf("otp should be sent as a number: %v", gotBody)
	}
}

func TestVerifyOTPNonNumericCode(t *testing.T) {
	svc := NewOTPService("http://unused.invalid", false, time.Second)

	_, err := svc.VerifyOTP(context.Background(), "9876543210", "abcd")
	if !errors.Is(err, ErrOTPRejected) {
		t.Fatalf("expected ErrOTPRejected, got %v", err)
	}
}

func TestVerifyOTPWrongCode(t *testing.T) {
	svc := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "invalid otp"})
	})

	_, err := svc.VerifyOTP(context.Background(), "9876543210", "9999")
	if !errors.Is(err, ErrOTPRejected) {
		t.Fatalf("expected ErrOTPRejected, got %v", err)
	}
}

func TestVerifyOTPMissingUserID(t *testing.T) {
	svc := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	})

	_, err := svc.VerifyOTP(context.Background(), "9876543210", "1234")
	if err == nil {
		t.Fatal("expected error when provider returns no user id")
	}
}

func TestSendOTPUnconfigured(t *testing.T) {
	svc := NewOTPService("", false, time.Second)
	if err := svc.SendOTP(context.Background(), "9876543210"); err == nil {
		t.Fatal("expected error when provider base URL is empty")
	}
}
