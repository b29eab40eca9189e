// Package docstore はドキュメントストアのRESTクライアントを提供する。
// プロファイルのUPSERT書き込みとブックマークコレクションの読み取りを扱う。
// どちらもセッションのIDトークンをベアラートークンとして使用する。
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/bukuma/internal/model"
)

// Client はドキュメントストアのクライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	projectID  string
	baseURL    string // テスト用にエンドポイントを差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, projectID, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		projectID:  projectID,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// documentURL はドキュメント階層パスの完全URLを構築する。
func (c *Client) documentURL(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return fmt.Sprintf("%s/projects/%s/databases/(default)/documents/%s",
		c.baseURL, c.projectID, strings.Join(escaped, "/"))
}

// UpsertProfile はユーザープロファイルをUPSERT（create-or-replace）する。
// パスはプロバイダー発行のユーザーID（またはフォールバックID）でキーされる。
// 同一IDでの再実行は既存ドキュメントの全置換となる。
func (c *Client) UpsertProfile(ctx context.Context, idToken string, profile *model.ProfileRecord) error {
	doc := profileDocument{
		Fields: profileFields{
			Email:      stringField{StringValue: profile.Email},
			CreatedAt:  timestampField{TimestampValue: profile.CreatedAt.UTC().Format(time.RFC3339)},
			UserID:     stringField{StringValue: profile.UserID},
			Bookmarks:  newArrayField(profile.Bookmarks),
			SharedWith: newArrayField(profile.SharedWith),
		},
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode profile document: %w", err)
	}

	reqURL := c.documentURL("users", profile.UserID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+idToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("profile upsert request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("document store returned status %d: %s", resp.StatusCode, string(detail))
	}

	return nil
}

// ListBookmarks はセッションのemailの下のブックマークコレクションを取得し、
// 表示用レコードへ写像する。フィールドが欠落したドキュメントも落とさず、
// プレースホルダー値で補完する。
// 取得や解析に失敗した場合はエラーを返す（空状態への降格は呼び出し元が行う）。
func (c *Client) ListBookmarks(ctx context.Context, idToken, email string) ([]model.Bookmark, error) {
	reqURL := c.documentURL("users", email, "bookmarks")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+idToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bookmark list request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("document store returned status %d", resp.StatusCode)
	}

	var parsed listResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse bookmark list: %w", err)
	}

	bookmarks := make([]model.Bookmark, 0, len(parsed.Documents))
	for _, doc := range parsed.Documents {
		bookmarks = append(bookmarks, mapDocument(doc))
	}

	return bookmarks, nil
}

// mapDocument は1件のドキュメントを表示用レコードへ写像する。
// title欠落は "Untitled"、url欠落は "#" で補完する。
func mapDocument(doc bookmarkDocument) model.Bookmark {
	bookmark := model.Bookmark{
		Title: model.DefaultBookmarkTitle,
		URL:   model.DefaultBookmarkURL,
	}

	if f, ok := doc.Fields["title"]; ok && f.StringValue != "" {
		bookmark.Title = f.StringValue
	}
	if f, ok := doc.Fields["url"]; ok && f.StringValue != "" {
		bookmark.URL = f.StringValue
	}

	return bookmark
}
