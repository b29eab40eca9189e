// Package enrich はブックマーク表示の補完機能を提供する。
// タイトルが欠落したブックマークについて、リンク先ページの<title>を
// ベストエフォートで解決する。失敗時は一切エラーを返さず空文字列を返し、
// 呼び出し元はプレースホルダー表示を維持する。
package enrich

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// TitleResolverService はページタイトル解決のインターフェース。
type TitleResolverService interface {
	// ResolveTitle は指定URLのページから<title>テキストを取得する。
	// 取得・解析に失敗した場合は空文字列を返す（エラーは返さない）。
	ResolveTitle(ctx context.Context, pageURL string) string
}

// SSRFValidator はタイトル解決が必要とするSSRF防止機能の部分集合。
// security.SSRFGuardServiceの部分集合として定義する。
type SSRFValidator interface {
	NewSafeClient(timeout time.Duration) *http.Client
	ValidateURL(rawURL string) error
}

// TitleResolver はTitleResolverServiceの実装。
// ブックマークURLはドキュメントストア由来のユーザーデータであるため、
// フェッチは必ずSSRFガード付きクライアントで行う。
type TitleResolver struct {
	ssrfGuard SSRFValidator
	logger    *slog.Logger
	timeout   time.Duration
	maxSize   int64
}

// NewTitleResolver はTitleResolverの新しいインスタンスを生成する。
func NewTitleResolver(ssrfGuard SSRFValidator, logger *slog.Logger, timeout time.Duration, maxSize int64) *TitleResolver {
	return &TitleResolver{
		ssrfGuard: ssrfGuard,
		logger:    logger,
		timeout:   timeout,
		maxSize:   maxSize,
	}
}

// ResolveTitle は指定URLのページから<title>テキストを取得する。
func (r *TitleResolver) ResolveTitle(ctx context.Context, pageURL string) string {
	// 1. 静的なURL検証（スキーム・ホスト・危険IPレンジ）
	if err := r.ssrfGuard.ValidateURL(pageURL); err != nil {
		r.logger.Warn("title lookup blocked",
			slog.String("url", pageURL),
			slog.String("error", err.Error()),
		)
		return ""
	}

	// 2. ガード付きクライアントでフェッチ
	client := r.ssrfGuard.NewSafeClient(r.timeout)

	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "Bukuma/1.0 Bookmark Popup")

	resp, err := client.Do(req)
	if err != nil {
		r.logger.Warn("title lookup request failed",
			slog.String("url", pageURL),
			slog.String("error", err.Error()),
		)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ""
	}

	// HTML以外のコンテンツはスキップ
	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") {
		return ""
	}

	// 3. サイズ上限付きでパースし、<title>を抽出
	body := io.LimitReader(resp.Body, r.maxSize)
	title := extractTitle(body)
	if title == "" {
		return ""
	}

	return title
}

// extractTitle はHTMLから最初の<title>要素のテキストを抽出する。
// 不正なHTMLでもパーサーが許容する範囲でベストエフォートに処理する。
func extractTitle(body io.Reader) string {
	doc, err := html.Parse(body)
	if err != nil {
		return ""
	}

	var title string
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			title = strings.TrimSpace(sb.String())
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)

	return title
}

// compile-time interface check
var _ TitleResolverService = (*TitleResolver)(nil)
