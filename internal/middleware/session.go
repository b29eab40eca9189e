package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/bukuma/internal/model"
	"github.com/hitoshi/bukuma/internal/repository"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// sessionContextKey はリクエストコンテキストにセッションを格納するためのキー。
var sessionContextKey = contextKey("session")

// NewSessionMiddleware はセッションストアから現在のセッションを読み取り、
// リクエストコンテキストに注入するミドルウェアを返す。
// セッションが存在しない場合は/loginへリダイレクトする（ビュー向けのため401は返さない）。
func NewSessionMiddleware(sessionStore repository.SessionStore) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sessionStore.Get(r.Context())
			if err != nil {
				slog.Error("failed to load session",
					slog.String("error", err.Error()),
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if session == nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext はリクエストコンテキストからセッションを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func SessionFromContext(ctx context.Context) *model.SessionRecord {
	session, _ := ctx.Value(sessionContextKey).(*model.SessionRecord)
	return session
}

// ContextWithSession はコンテキストにセッションを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithSession(ctx context.Context, session *model.SessionRecord) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}
