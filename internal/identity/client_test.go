package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/hitoshi/bukuma/internal/model"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// newCountingServer はリクエスト数を数えるテスト用サーバーを返す。
// ローカル検証が先に失敗した場合、ネットワーク呼び出しがゼロであることの検証に使う。
func newCountingServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func successResponse() map[string]interface{} {
	return map[string]interface{}{
		"idToken":      "id-token-1",
		"refreshToken": "refresh-token-1",
		"email":        "user@example.com",
		"expiresIn":    "3600",
		"localId":      "uid-1",
	}
}

func TestSignIn_EmptyFields_FailsLocallyWithoutNetworkCall(t *testing.T) {
	server, calls := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(successResponse())
	})

	var buf bytes.Buffer
	c := NewClient(server.Client(), newTestLogger(&buf), "key", server.URL)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"両方空", "", ""},
		{"メールのみ空", "", "secret"},
		{"パスワードのみ空", "user@example.com", ""},
		{"メールが空白のみ", "   ", "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.SignIn(context.Background(), tt.email, tt.password)

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("APIErrorを返すべき: %v", err)
			}
			if apiErr.Code != model.ErrCodeValidationFailed {
				t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeValidationFailed)
			}
			if apiErr.Message != "Please enter both email and password" {
				t.Errorf("Message = %q", apiErr.Message)
			}
		})
	}

	if got := calls.Load(); got != 0 {
		t.Errorf("検証エラー時のネットワーク呼び出し数 = %d, want 0", got)
	}
}

func TestSignUp_PasswordMismatch_FailsLocallyWithoutNetworkCall(t *testing.T) {
	server, calls := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(successResponse())
	})

	var buf bytes.Buffer
	c := NewClient(server.Client(), newTestLogger(&buf), "key", server.URL)

	_, err := c.SignUp(context.Background(), "user@example.com", "secret", "different")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("APIErrorを返すべき: %v", err)
	}
	if apiErr.Code != model.ErrCodeValidationFailed {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeValidationFailed)
	}
	if apiErr.Message != "Passwords do not match" {
		t.Errorf("Message = %q, want Passwords do not match", apiErr.Message)
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("検証エラー時のネットワーク呼び出し数 = %d, want 0", got)
	}
}

func TestSignIn_Success_MapsResponseVerbatim(t *testing.T) {
	server, _ := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("HTTPメソッド = %s, want POST", r.Method)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q, want test-key", got)
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("リクエストボディのデコードに失敗: %v", err)
		}
		if body["email"] != "user@example.com" {
			t.Errorf("email = %v", body["email"])
		}
		if body["returnSecureToken"] != true {
			t.Error("returnSecureToken = true を要求すべき")
		}

		json.NewEncoder(w).Encode(successResponse())
	})

	var buf bytes.Buffer
	c := NewClient(server.Client(), newTestLogger(&buf), "test-key", server.URL)

	record, err := c.SignIn(context.Background(), "user@example.com", "secret")
	if err != nil {
		t.Fatalf("SignIn がエラーを返した: %v", err)
	}

	want := model.SessionRecord{
		IDToken:      "id-token-1",
		RefreshToken: "refresh-token-1",
		Email:        "user@example.com",
		ExpiresIn:    3600,
		LocalID:      "uid-1",
	}
	if *record != want {
		t.Errorf("SessionRecord = %+v, want %+v", *record, want)
	}
}

func TestSignIn_TrimsEmailBeforeSending(t *testing.T) {
	server, _ := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "user@example.com" {
			t.Errorf("トリム済みのemailを送るべき: %v", body["email"])
		}
		json.NewEncoder(w).Encode(successResponse())
	})

	var buf bytes.Buffer
	c := NewClient(server.Client(), newTestLogger(&buf), "key", server.URL)

	if _, err := c.SignIn(context.Background(), "  user@example.com  ", "secret"); err != nil {
		t.Fatalf("SignIn がエラーを返した: %v", err)
	}
}

func TestSignIn_ServiceError_MapsToLoginFailed(t *testing.T) {
	server, _ := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"message": "INVALID_PASSWORD"},
		})
	})

	var buf bytes.Buffer
	c := NewClient(server.Client(), newTestLogger(&buf), "key", server.URL)

	_, err := c.SignIn(context.Background(), "user@example.com", "wrong")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("APIErrorを返すべき: %v", err)
	}
	if apiErr.Code != model.ErrCodeAuthFailed {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeAuthFailed)
	}
	if apiErr.Message != "Login failed: INVALID_PASSWORD" {
		t.Errorf("Message = %q, want Login failed: INVALID_PASSWORD", apiErr.Message)
	}
}

func TestSignUp_ServiceError_MapsToSignupFailed(t *testing.T) {
	server, _ := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"message": "EMAIL_EXISTS"},
		})
	})

	var buf bytes.Buffer
	c := NewClient(server.Client(), newTestLogger(&buf), "key", server.URL)

	_, err := c.SignUp(context.Background(), "user@example.com", "secret", "secret")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("APIErrorを返すべき: %v", err)
	}
	if apiErr.Message != "Signup failed: EMAIL_EXISTS" {
		t.Errorf("Message = %q, want Signup failed: EMAIL_EXISTS", apiErr.Message)
	}
}

func TestSignIn_TransportFailure_MapsToLoginFailed(t *testing.T) {
	server, _ := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close() // 接続拒否で通信エラーを起こす

	var buf bytes.Buffer
	c := NewClient(http.DefaultClient, newTestLogger(&buf), "key", server.URL)

	_, err := c.SignIn(context.Background(), "user@example.com", "secret")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("APIErrorを返すべき: %v", err)
	}
	if apiErr.Category != "auth" {
		t.Errorf("Category = %q, want auth", apiErr.Category)
	}
	if got := apiErr.Message; len(got) < len("Login failed: ") || got[:len("Login failed: ")] != "Login failed: " {
		t.Errorf("通信エラーも Login failed: でプレフィックスすべき: %q", got)
	}
}

func TestSignIn_SignUp_UseDistinctEndpoints(t *testing.T) {
	var paths []string
	server, _ := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		json.NewEncoder(w).Encode(successResponse())
	})

	var buf bytes.Buffer
	c := NewClient(server.Client(), newTestLogger(&buf), "key", server.URL)

	if _, err := c.SignIn(context.Background(), "user@example.com", "secret"); err != nil {
		t.Fatalf("SignIn がエラーを返した: %v", err)
	}
	if _, err := c.SignUp(context.Background(), "user@example.com", "secret", "secret"); err != nil {
		t.Fatalf("SignUp がエラーを返した: %v", err)
	}

	if len(paths) != 2 {
		t.Fatalf("リクエスト数 = %d, want 2", len(paths))
	}
	if paths[0] != "/accounts:signInWithPassword" {
		t.Errorf("SignIn パス = %q", paths[0])
	}
	if paths[1] != "/accounts:signUp" {
		t.Errorf("SignUp パス = %q", paths[1])
	}
}

func TestSignIn_UnparsableExpiresIn_StoredAsZero(t *testing.T) {
	server, _ := newCountingServer(t, func(w http.ResponseWriter, r *http.Request) {
		resp := successResponse()
		resp["expiresIn"] = "not-a-number"
		json.NewEncoder(w).Encode(resp)
	})

	var buf bytes.Buffer
	c := NewClient(server.Client(), newTestLogger(&buf), "key", server.URL)

	record, err := c.SignIn(context.Background(), "user@example.com", "secret")
	if err != nil {
		t.Fatalf("SignIn がエラーを返した: %v", err)
	}
	if record.ExpiresIn != 0 {
		t.Errorf("ExpiresIn = %d, want 0", record.ExpiresIn)
	}
}
