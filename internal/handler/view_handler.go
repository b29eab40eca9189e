package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/bukuma/internal/bookmark"
	"github.com/hitoshi/bukuma/internal/middleware"
	"github.com/hitoshi/bukuma/internal/model"
	"github.com/hitoshi/bukuma/internal/security"
)

// BookmarkFetcherInterface はビューハンドラーが必要とする取得サービス。
type BookmarkFetcherInterface interface {
	Fetch(ctx context.Context, session *model.SessionRecord) ([]model.Bookmark, error)
}

// ViewHandler は画面表示（GET）のHTTPハンドラー。
type ViewHandler struct {
	templates *viewTemplates
	fetcher   BookmarkFetcherInterface
	sanitizer security.DisplaySanitizerService
}

// NewViewHandler はViewHandlerを生成する。
func NewViewHandler(fetcher BookmarkFetcherInterface, sanitizer security.DisplaySanitizerService) *ViewHandler {
	return &ViewHandler{
		templates: parseViewTemplates(),
		fetcher:   fetcher,
		sanitizer: sanitizer,
	}
}

// Bookmarks はブックマーク一覧ビューを表示する。
// GET /
// セッションミドルウェアを通過した後に呼ばれる。一覧の取得失敗は
// 空一覧と区別されず、どちらも空状態表示になる。
func (h *ViewHandler) Bookmarks(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	if session == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	bookmarks, err := h.fetcher.Fetch(r.Context(), session)
	if err != nil {
		// 取得中にログアウトまたは再ログインされた場合、古い結果は表示しない
		if errors.Is(err, bookmark.ErrSessionSuperseded) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		slog.Error("bookmark view failed", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// 表示前にリモート由来のタイトルとURLをサニタイズする
	display := make([]model.Bookmark, len(bookmarks))
	for i, b := range bookmarks {
		display[i] = model.Bookmark{
			Title: h.sanitizer.SanitizeTitle(b.Title),
			URL:   h.sanitizer.SanitizeHref(b.URL, model.DefaultBookmarkURL),
		}
	}

	render(w, http.StatusOK, h.templates.bookmarks, bookmarksViewData{
		Bookmarks: display,
		CSRFToken: middleware.CSRFTokenFromContext(r.Context()),
	})
}

// Login はログインフォームを表示する。エラースロットは空で描画する。
// GET /login
func (h *ViewHandler) Login(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, h.templates.login, formViewData{
		CSRFToken: middleware.CSRFTokenFromContext(r.Context()),
	})
}

// Signup はサインアップフォームを表示する。エラースロットは空で描画する。
// GET /signup
func (h *ViewHandler) Signup(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, h.templates.signup, formViewData{
		CSRFToken: middleware.CSRFTokenFromContext(r.Context()),
	})
}
