package security

import (
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// DisplaySanitizerService は表示用文字列のサニタイズ機能のインターフェースを定義する。
type DisplaySanitizerService interface {
	// SanitizeTitle はタイトルからHTMLマークアップを全て除去する。
	// 空文字列の入力には空文字列を返す。同一入力に対して常に同一出力を返す。
	SanitizeTitle(raw string) string

	// SanitizeHref はリンク先URLを検証し、http/https以外のスキームや
	// パース不能なURLはフォールバック値に置き換えて返す。
	// 相対URLはブックマークとして意味を持たないため同様に置き換える。
	SanitizeHref(raw, fallback string) string
}

// displaySanitizer はDisplaySanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフに処理を行う。
type displaySanitizer struct {
	policy *bluemonday.Policy
}

// NewDisplaySanitizer はDisplaySanitizerServiceの新しいインスタンスを生成する。
// タイトル用ポリシーはStrictPolicy（全タグ除去）を使用する。
func NewDisplaySanitizer() *displaySanitizer {
	return &displaySanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeTitle はタイトルからHTMLマークアップを全て除去する。
func (s *displaySanitizer) SanitizeTitle(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}

// SanitizeHref はリンク先URLを検証し、安全でない場合はfallbackを返す。
func (s *displaySanitizer) SanitizeHref(raw, fallback string) string {
	if raw == "" || raw == fallback {
		return fallback
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fallback
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return raw
	default:
		// javascript:, data: 等のスキームと相対URLはここで落ちる
		return fallback
	}
}
