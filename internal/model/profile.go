// Package model はドメインモデルを定義する。
package model

import "time"

// ProfileRecord はサインアップ時にドキュメントストアへ作成する
// ユーザープロファイルを表す。作成は1回限りで、以後このサービスが
// 読み取ることはない（ブックマーク取得はemailスコープの別パスを使う）。
type ProfileRecord struct {
	Email      string
	CreatedAt  time.Time
	UserID     string
	Bookmarks  []string
	SharedWith []string
}
