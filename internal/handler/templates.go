// Package handler はポップアップ画面のHTTPハンドラーを提供する。
// すべてのビューはサーバーサイドで全体を再構築する。部分更新は行わない。
package handler

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/hitoshi/bukuma/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// viewTemplates は各ビューのテンプレートを保持する。
// レイアウトとビュー本体の組で起動時に一度だけパースする。
type viewTemplates struct {
	login     *template.Template
	signup    *template.Template
	bookmarks *template.Template
}

// parseViewTemplates は埋め込みテンプレートをパースする。
// テンプレートはビルドに同梱されるため、失敗はプログラミングエラー。
func parseViewTemplates() *viewTemplates {
	return &viewTemplates{
		login:     template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/login.html")),
		signup:    template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/signup.html")),
		bookmarks: template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/bookmarks.html")),
	}
}

// formViewData はログイン・サインアップフォームのレンダリングデータ。
// パスワードは保持しない。再表示されるのはメールアドレスのみ。
type formViewData struct {
	ErrorMessage string
	Email        string
	CSRFToken    string
}

// bookmarksViewData はブックマーク一覧ビューのレンダリングデータ。
type bookmarksViewData struct {
	Bookmarks []model.Bookmark
	CSRFToken string
}

// render はテンプレートを実行し、失敗時は500を返す。
func render(w http.ResponseWriter, statusCode int, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("template execution failed", slog.String("error", err.Error()))
	}
}
