package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	s := NewService("secret")
	token, err := s.IssueToken("user-1", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	userID, err := s.ValidateToken(token)
	if err != nil || userID != "user-1" {
		t.Errorf("ValidateToken() = %q, %v", userID, err)
	}

	if _, err := NewService("other").ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret error = %v, want ErrInvalidToken", err)
	}
}

func TestExpiredToken(t *testing.T) {
	s := NewService("secret")
	s.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	token, err := s.IssueToken("user-1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	s.now = time.Now
	if _, err := s.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token error = %v, want ErrInvalidToken", err)
	}
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(UserIDFromContext(r.Context())))
	})
}

func TestMiddleware(t *testing.T) {
	s := NewService("secret")
	token, _ := s.IssueToken("user-1", time.Hour)

	tests := []struct {
		name     string
		optional bool
		header   string
		query    string
		status   int
		body     string
	}{
		{"required with header", false, "Bearer " + token, "", http.StatusOK, "user-1"},
		{"required with query", false, "", token, http.StatusOK, "user-1"},
		{"required missing", false, "", "", http.StatusUnauthorized, ""},
		{"required bad scheme", false, "Basic abc", "", http.StatusUnauthorized, ""},
		{"required invalid", false, "Bearer junk", "", http.StatusUnauthorized, ""},
		{"optional anonymous", true, "", "", http.StatusOK, ""},
		{"optional with token", true, "Bearer " + token, "", http.StatusOK, "user-1"},
		{"optional invalid", true, "Bearer junk", "", http.StatusUnauthorized, ""},
		{"optional bad scheme", true, "Basic abc", "", http.StatusUnauthorized, ""},
		{"optional empty bearer", true, "Bearer ", "", http.StatusUnauthorized, ""},
		{"optional empty header", true, " ", "", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := s.AuthMiddleware(echoUser())
			if tt.optional {
				h = s.OptionalAuth(echoUser())
			}
			req := httptest.NewRequest("GET", "/?token="+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.status == http.StatusOK && w.Body.String() != tt.body {
				t.Errorf("user = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}
