package auth

import (
	"errors"
	"testing"
	"time"

	"violation-log-service/config"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(&config.Config{
		SafetyUsers: []config.Credential{
			{Name: "فواز الرويلي", Password: "fawaz@2026"},
			{Name: "فيصل القوصي", Password: "faisal@2026"},
		},
		GuestName: "زائر المصنع",
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name     string
		user     string
		password string
		wantErr  error
	}{
		{"valid credentials", "فواز الرويلي", "fawaz@2026", nil},
		{"second user", "فيصل القوصي", "faisal@2026", nil},
		{"wrong password", "فواز الرويلي", "wrong", ErrInvalidCredentials},
		{"unknown user", "مجهول", "fawaz@2026", ErrUnknownUser},
		{"empty password", "فواز الرويلي", "", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, session, err := svc.Login(tt.user, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Login error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if token == "" {
				t.Error("expected a non-empty token")
			}
			if session.Role != RoleSafety {
				t.Errorf("role = %q, want %q", session.Role, RoleSafety)
			}
			if session.Name != tt.user {
				t.Errorf("name = %q, want %q", session.Name, tt.user)
			}
			if session.ID == "" {
				t.Error("expected a session ID")
			}
		})
	}
}

func TestGuestLogin(t *testing.T) {
	svc := newTestService(t)

	token, session, err := svc.GuestLogin()
	if err != nil {
		t.Fatalf("GuestLogin failed: %v", err)
	}
	if token == "" {
		t.Error("expected a non-empty token")
	}
	if session.Role != RoleGuest {
		t.Errorf("role = %q, want %q", session.Role, RoleGuest)
	}
	if session.Name != "زائر المصنع" {
		t.Errorf("name = %q", session.Name)
	}
}

func TestValidateTokenRoundTrip(t *testing.T) {
	svc := newTestService(t)

	token, issued, err := svc.Login("فواز الرويلي", "fawaz@2026")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	restored, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if *restored != *issued {
		t.Errorf("restored session %+v, want %+v", restored, issued)
	}
}

func TestValidateTokenRejectsBadTokens(t *testing.T) {
	svc := newTestService(t)
	token, _, err := svc.Login("فواز الرويلي", "fawaz@2026")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	otherSecret, _ := NewService(&config.Config{
		JWTSecret: "another-secret",
		TokenTTL:  time.Hour,
	})

	tests := []struct {
		name  string
		svc   *Service
		token string
	}{
		{"empty token", svc, ""},
		{"garbage token", svc, "not.a.token"},
		{"tampered token", svc, token + "x"},
		{"wrong secret", otherSecret, token},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.svc.ValidateToken(tt.token); err == nil {
				t.Error("expected validation to fail")
			}
		})
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc, err := NewService(&config.Config{
		SafetyUsers: []config.Credential{{Name: "فواز الرويلي", Password: "fawaz@2026"}},
		JWTSecret:   "test-secret",
		TokenTTL:    -time.Minute,
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	token, _, err := svc.Login("فواز الرويلي", "fawaz@2026")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("expected an expired token to be rejected")
	}
}
