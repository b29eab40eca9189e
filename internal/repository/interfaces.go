// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/bukuma/internal/model"
)

// SessionStore はセッションレコードの永続化インターフェース。
// ストアが保持するレコードは固定キーの下の最大1件のみで、
// その存在有無が唯一の認証シグナルとなる。
type SessionStore interface {
	// Get は永続化済みレコードを取得する。未保存または削除済みの場合はnilを返す。
	Get(ctx context.Context) (*model.SessionRecord, error)

	// Set はレコードを全置換で保存する。部分更新は行わない。
	Set(ctx context.Context, record *model.SessionRecord) error

	// Clear はレコードを完全に削除する。未保存の場合もエラーにしない。
	Clear(ctx context.Context) error
}
