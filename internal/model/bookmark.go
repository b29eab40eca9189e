// Package model はドメインモデルを定義する。
package model

// 表示用フォールバック値。ドキュメントストア側でフィールドが欠落していても
// レコードは落とさず、これらのプレースホルダーで補完する。
const (
	// DefaultBookmarkTitle はtitleフィールド欠落時の表示タイトル。
	DefaultBookmarkTitle = "Untitled"
	// DefaultBookmarkURL はurlフィールド欠落時の無害なリンク先。
	DefaultBookmarkURL = "#"
)

// Bookmark はポップアップに表示する1件のブックマークを表す。
// ドキュメントストアから取得したドキュメントを表示用に写像したもの。
type Bookmark struct {
	Title string
	URL   string
}
