package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"lookbook/internal/api"
	"lookbook/internal/auth"
)

func TestListenAddrRemoteGuard(t *testing.T) {
	t.Run("allows loopback", func(t *testing.T) {
		t.Setenv(allowRemoteEnvKey, "")
		addr, err := ListenAddr("http://127.0.0.1:7480")
		if err != nil {
			t.Fatalf("expected loopback to be allowed, got error: %v", err)
		}
		if addr != "127.0.0.1:7480" {
			t.Fatalf("unexpected addr: %s", addr)
		}
	})

	t.Run("blocks non-loopback by default", func(t *testing.T) {
		t.Setenv(allowRemoteEnvKey, "")
		_, err := ListenAddr("http://0.0.0.0:7480")
		if err == nil {
			t.Fatal("expected error for non-loopback listen host")
		}
	})

	t.Run("allows non-loopback when explicitly enabled", func(t *testing.T) {
		t.Setenv(allowRemoteEnvKey, "true")
		addr, err := ListenAddr("http://0.0.0.0:7480")
		if err != nil {
			t.Fatalf("expected allow-remote to permit host, got error: %v", err)
		}
		if addr != "0.0.0.0:7480" {
			t.Fatalf("unexpected addr: %s", addr)
		}
	})
}

func TestWithCuratorAuth(t *testing.T) {
	hash, err := auth.HashPassword("runway-2024")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	tests := []struct {
		name     string
		hash     string
		method   string
		user     string
		password string
		withAuth bool
		want     int
	}{
		{name: "reads are open", hash: hash, method: http.MethodGet, want: http.StatusNoContent},
		{name: "mutation without credentials", hash: hash, method: http.MethodPost, want: http.StatusUnauthorized},
		{name: "mutation with wrong password", hash: hash, method: http.MethodPost, user: "curator", password: "nope-nope", withAuth: true, want: http.StatusUnauthorized},
		{name: "mutation with other user", hash: hash, method: http.MethodPost, user: "editor", password: "runway-2024", withAuth: true, want: http.StatusUnauthorized},
		{name: "mutation with curator", hash: hash, method: http.MethodPost, user: "Curator", password: "runway-2024", withAuth: true, want: http.StatusNoContent},
		{name: "auth disabled", method: http.MethodPost, want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := &Server{opts: Options{CuratorPasswordHash: tt.hash}}
			nextCalled := false
			handler := srv.withCuratorAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusNoContent)
			}))

			req := httptest.NewRequest(tt.method, "/v1/brands", nil)
			if tt.withAuth {
				req.SetBasicAuth(tt.user, tt.password)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
			if tt.want != http.StatusUnauthorized {
				if !nextCalled {
					t.Fatal("next handler should be called")
				}
				return
			}
			if nextCalled {
				t.Fatal("next handler should not be called")
			}
			if w.Header().Get("WWW-Authenticate") == "" {
				t.Fatal("expected WWW-Authenticate challenge")
			}
			var errResp api.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.ErrorCode != ErrCodeUnauthorized {
				t.Fatalf("expected error_code %d, got %d", ErrCodeUnauthorized, errResp.ErrorCode)
			}
		})
	}
}

func TestWriteErrorHidesInternalMessages(t *testing.T) {
	srv := &Server{}
	w := httptest.NewRecorder()
	srv.writeErrorReq(w, httptest.NewRequest(http.MethodGet, "/v1/brands", nil), http.StatusInternalServerError, storeFailure(errors.New("disk on fire")))

	var errResp api.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Error != "internal error" || errResp.ErrorCode != ErrCodeStoreFailure {
		t.Fatalf("unexpected error response: %#v", errResp)
	}
}

func TestUploadLimiterRejectsOverflow(t *testing.T) {
	srv := &Server{uploadLimiter: make(chan struct{}, 1)}
	srv.uploadLimiter <- struct{}{}

	w := httptest.NewRecorder()
	called := false
	srv.withLimiter(w, httptest.NewRequest(http.MethodPost, "/v1/uploads", nil), srv.uploadLimiter, "upload", func() { called = true })
	if called || w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 without running handler, got %d (called=%v)", w.Code, called)
	}

	srv.releaseLimiter(srv.uploadLimiter)
	w = httptest.NewRecorder()
	srv.withLimiter(w, httptest.NewRequest(http.MethodPost, "/v1/uploads", nil), srv.uploadLimiter, "upload", func() { called = true })
	if !called {
		t.Fatal("expected handler to run once a slot is free")
	}
}
