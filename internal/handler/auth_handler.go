package handler

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/bukuma/internal/metrics"
	"github.com/hitoshi/bukuma/internal/model"
	"github.com/hitoshi/bukuma/internal/repository"
)

// AuthServiceInterface は認証ハンドラーが必要とするアイデンティティ操作。
type AuthServiceInterface interface {
	SignIn(ctx context.Context, email, password string) (*model.SessionRecord, error)
	SignUp(ctx context.Context, email, password, confirmPassword string) (*model.SessionRecord, error)
}

// ProfileInitializerInterface はサインアップ後のプロファイル初期化。
type ProfileInitializerInterface interface {
	Initialize(ctx context.Context, session *model.SessionRecord) error
}

// AuthHandler は認証フォーム（POST）のHTTPハンドラー。
type AuthHandler struct {
	templates    *viewTemplates
	authService  AuthServiceInterface
	sessionStore repository.SessionStore
	profileInit  ProfileInitializerInterface
	collector    metrics.MetricsCollector
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(authService AuthServiceInterface, sessionStore repository.SessionStore, profileInit ProfileInitializerInterface, collector metrics.MetricsCollector) *AuthHandler {
	return &AuthHandler{
		templates:    parseViewTemplates(),
		authService:  authService,
		sessionStore: sessionStore,
		profileInit:  profileInit,
		collector:    collector,
	}
}

// Login はログインフォームの送信を処理する。
// POST /login
// 成功時はセッションを永続化して/へリダイレクトする。
// 失敗時は同じフォームをエラーメッセージ付きで再描画する（パスワードは保持しない）。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	session, err := h.authService.SignIn(r.Context(), email, password)
	if err != nil {
		h.renderAuthFailure(w, r, "login", h.templates.login, email, err)
		return
	}

	if err := h.sessionStore.Set(r.Context(), session); err != nil {
		slog.Error("failed to persist session",
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.collector.RecordAuthAttempt("login", "success")
	slog.Info("login succeeded", slog.String("email", session.Email))

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Signup はサインアップフォームの送信を処理する。
// POST /signup
// 成功時はセッションを永続化し、プロファイル初期化をベストエフォートで
// 行ってから/へリダイレクトする。初期化失敗はログのみでフローを止めない。
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	confirmPassword := r.PostFormValue("confirm_password")

	session, err := h.authService.SignUp(r.Context(), email, password, confirmPassword)
	if err != nil {
		h.renderAuthFailure(w, r, "signup", h.templates.signup, email, err)
		return
	}

	if err := h.sessionStore.Set(r.Context(), session); err != nil {
		slog.Error("failed to persist session",
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// プロファイル初期化の失敗でサインアップは止めない
	if err := h.profileInit.Initialize(r.Context(), session); err != nil {
		slog.Error("profile initialization failed",
			slog.String("email", session.Email),
			slog.String("error", err.Error()),
		)
	}

	h.collector.RecordAuthAttempt("signup", "success")
	slog.Info("signup succeeded", slog.String("email", session.Email))

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout はセッションを破棄してログインフォームへ戻す。
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionStore.Clear(r.Context()); err != nil {
		slog.Error("failed to clear session",
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	slog.Info("logout succeeded")

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// renderAuthFailure は認証失敗時のフォーム再描画を行う。
// APIErrorのメッセージをエラースロットに表示し、メールアドレスのみ保持する。
// APIError以外のエラーは想定外として500を返す。
func (h *AuthHandler) renderAuthFailure(w http.ResponseWriter, r *http.Request, operation string, tmpl *template.Template, email string, err error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		slog.Error("unexpected auth error",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	statusCode := http.StatusUnauthorized
	outcome := "auth_failed"
	if apiErr.Code == model.ErrCodeValidationFailed {
		statusCode = http.StatusBadRequest
		outcome = "validation_failed"
	}
	h.collector.RecordAuthAttempt(operation, outcome)

	// CSRF Cookieは安全なメソッドでのみ発行されるため、再描画では
	// 既存Cookieの値をそのまま埋め直す
	csrfToken := ""
	if cookie, cookieErr := r.Cookie("csrf_token"); cookieErr == nil {
		csrfToken = cookie.Value
	}

	render(w, statusCode, tmpl, formViewData{
		ErrorMessage: apiErr.Message,
		Email:        email,
		CSRFToken:    csrfToken,
	})
}
