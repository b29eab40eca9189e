// Package model はドメインモデルを定義する。
package model

// SessionRecordKey はセッションレコードを永続化する際の固定キー。
// ストアには常にこのキーの下に最大1件のレコードのみ存在する。
const SessionRecordKey = "userAuth"

// SessionRecord は認証済みセッションのローカル永続化レコードを表す。
// アイデンティティサービスのサインイン/サインアップレスポンスを
// そのまま写し取ったもので、発行後の更新（リフレッシュ）は行わない。
type SessionRecord struct {
	// IDToken はアイデンティティサービスが発行したベアラートークン。
	// ドキュメントストアへの全リクエストのAuthorizationヘッダーに使用する。
	IDToken string `json:"idToken"`

	// RefreshToken は発行時に受け取ったリフレッシュトークン。
	// 保存のみ行い、トークンの更新には使用しない。
	RefreshToken string `json:"refreshToken"`

	// Email はアイデンティティサービスがエコーバックしたメールアドレス。
	// ブックマークコレクションのパススコープに使用する。
	Email string `json:"email"`

	// ExpiresIn はトークンの有効期間（秒）。参考情報として保存するのみで、
	// 期限切れの強制は行わない。
	ExpiresIn int `json:"expiresIn"`

	// LocalID はプロバイダーが発行したユーザーID。
	// サインアップレスポンスに含まれない場合は空文字列となり、
	// プロファイル作成時に代替IDへフォールバックする。
	LocalID string `json:"localId,omitempty"`
}
