// Package bookmark はブックマーク一覧の取得を提供する。
// ドキュメントストアから一覧を取得し、取得開始時のセッションが
// まだ有効な場合のみ結果を返す。
package bookmark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/bukuma/internal/metrics"
	"github.com/hitoshi/bukuma/internal/model"
	"github.com/hitoshi/bukuma/internal/repository"
)

// ErrSessionSuperseded は取得中にセッションが差し替えられた場合に返す。
// 古いセッションに紐づく結果は表示してはならない。
var ErrSessionSuperseded = errors.New("session superseded during fetch")

// DocumentLister はブックマーク取得が必要とするドキュメントストア操作。
type DocumentLister interface {
	ListBookmarks(ctx context.Context, idToken string, email string) ([]model.Bookmark, error)
}

// TitleResolver はタイトル欠落ブックマークの補完に使う。
type TitleResolver interface {
	ResolveTitle(ctx context.Context, pageURL string) string
}

// FetcherService はブックマーク取得のインターフェース。
type FetcherService interface {
	Fetch(ctx context.Context, session *model.SessionRecord) ([]model.Bookmark, error)
}

// Fetcher はFetcherServiceの実装。
type Fetcher struct {
	sessionStore repository.SessionStore
	lister       DocumentLister
	titles       TitleResolver
	collector    metrics.MetricsCollector
	logger       *slog.Logger
}

// NewFetcher はFetcherの新しいインスタンスを生成する。
// titlesがnilの場合、タイトル補完はスキップされる。
func NewFetcher(sessionStore repository.SessionStore, lister DocumentLister, titles TitleResolver, collector metrics.MetricsCollector, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		sessionStore: sessionStore,
		lister:       lister,
		titles:       titles,
		collector:    collector,
		logger:       logger,
	}
}

// Fetch は指定セッションでブックマーク一覧を取得する。
// ストア側の失敗は空一覧として扱う（画面上は「ブックマークなし」と同じ表示）。
// 取得完了時点でストア内のセッションが引数のものと異なる場合、
// 結果を破棄してErrSessionSupersededを返す。
func (f *Fetcher) Fetch(ctx context.Context, session *model.SessionRecord) ([]model.Bookmark, error) {
	if session == nil {
		return nil, fmt.Errorf("session is nil")
	}

	// 1. ドキュメントストアから一覧を取得
	start := time.Now()
	bookmarks, err := f.lister.ListBookmarks(ctx, session.IDToken, session.Email)
	f.collector.RecordBookmarkFetchLatency(time.Since(start))
	if err != nil {
		f.logger.Warn("bookmark list fetch failed",
			slog.String("email", session.Email),
			slog.String("error", err.Error()),
		)
		f.collector.RecordBookmarkFetchFailure("docstore_error")
		bookmarks = []model.Bookmark{}
	}

	// 2. 取得開始時のセッションが現在も有効か確認する
	current, err := f.sessionStore.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("ブックマーク取得後のセッション確認に失敗しました: %w", err)
	}
	if current == nil || current.IDToken != session.IDToken {
		f.logger.Info("discarding fetch result for superseded session",
			slog.String("email", session.Email),
		)
		f.collector.RecordStaleFetchDiscard()
		return nil, ErrSessionSuperseded
	}

	// 3. タイトル欠落ブックマークをベストエフォートで補完
	if f.titles != nil {
		for i := range bookmarks {
			if bookmarks[i].Title != model.DefaultBookmarkTitle {
				continue
			}
			if bookmarks[i].URL == model.DefaultBookmarkURL {
				continue
			}
			resolved := f.titles.ResolveTitle(ctx, bookmarks[i].URL)
			if resolved == "" {
				f.collector.RecordTitleLookup("miss")
				continue
			}
			f.collector.RecordTitleLookup("hit")
			bookmarks[i].Title = resolved
		}
	}

	return bookmarks, nil
}

// compile-time interface check
var _ FetcherService = (*Fetcher)(nil)
