// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// ポップアップのエラースロットに表示するメッセージと原因カテゴリを含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ（表示用の英文）
	Category string // カテゴリ: validation, auth, profile, bookmark, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeAuthFailed          = "AUTH_FAILED"
	ErrCodeProfileWriteFailed  = "PROFILE_WRITE_FAILED"
	ErrCodeBookmarkFetchFailed = "BOOKMARK_FETCH_FAILED"
)

// NewValidationError は入力検証エラーを生成する。
// ネットワーク呼び出し前のローカル検証で使用し、messageをそのまま表示する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  message,
		Category: "validation",
		Action:   "Fix the highlighted input and submit again.",
	}
}

// NewLoginFailedError はサインイン失敗エラーを生成する。
// reasonにはアイデンティティサービスのerror.messageまたは通信エラーを渡す。
func NewLoginFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeAuthFailed,
		Message:  fmt.Sprintf("Login failed: %s", reason),
		Category: "auth",
		Action:   "Check your email and password, then try again.",
	}
}

// NewSignupFailedError はサインアップ失敗エラーを生成する。
func NewSignupFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeAuthFailed,
		Message:  fmt.Sprintf("Signup failed: %s", reason),
		Category: "auth",
		Action:   "Check the entered details, then try again.",
	}
}

// NewProfileWriteError はプロファイル作成失敗エラーを生成する。
// ログ記録専用であり、ユーザーには表示しない。サインアップフローも止めない。
func NewProfileWriteError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeProfileWriteFailed,
		Message:  fmt.Sprintf("profile write failed: %s", reason),
		Category: "profile",
		Action:   "No user action required.",
	}
}

// NewBookmarkFetchError はブックマーク取得失敗エラーを生成する。
// ログ記録専用。呼び出し側は空のリストとして扱い、空状態表示に降格する。
func NewBookmarkFetchError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeBookmarkFetchFailed,
		Message:  fmt.Sprintf("bookmark fetch failed: %s", reason),
		Category: "bookmark",
		Action:   "No user action required.",
	}
}
