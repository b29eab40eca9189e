// Package profile はサインアップ直後のユーザープロファイル初期化を提供する。
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/bukuma/internal/model"
)

// fallbackEmail はレスポンスにemailが欠落していた場合のプレースホルダー。
const fallbackEmail = "unknown@example.com"

// DocumentWriter はプロファイル書き込みに必要なドキュメントストア操作のインターフェース。
type DocumentWriter interface {
	// UpsertProfile はプロファイルをcreate-or-replaceで書き込む。
	UpsertProfile(ctx context.Context, idToken string, profile *model.ProfileRecord) error
}

// Initializer はサインアップ成功後に1回だけ呼ばれ、空のコレクションを持つ
// プロファイルドキュメントを作成する。失敗してもサインアップフローは
// 進行させる（呼び出し元がログに記録して握りつぶす）ベストエフォート処理。
type Initializer struct {
	writer DocumentWriter
	logger *slog.Logger
	now    func() time.Time // テスト用に差し替え可能
}

// NewInitializer はInitializerを生成する。
func NewInitializer(writer DocumentWriter, logger *slog.Logger) *Initializer {
	return &Initializer{
		writer: writer,
		logger: logger,
		now:    time.Now,
	}
}

// Initialize はセッションからプロファイルを組み立てて書き込む。
// プロファイルのキーはプロバイダー発行のユーザーIDを優先し、
// 欠落時はタイムスタンプベースの代替IDへフォールバックする。
// 代替IDはプロバイダーが実際に発行するIDとは一致しない点に注意
// （既知の不整合。ブックマーク読み取りはemailスコープのため影響しない）。
func (i *Initializer) Initialize(ctx context.Context, session *model.SessionRecord) error {
	userID := session.LocalID
	if userID == "" {
		userID = fmt.Sprintf("user_%d", i.now().UnixMilli())
		i.logger.Warn("provider user id missing, using synthetic fallback",
			slog.String("user_id", userID),
		)
	}

	email := session.Email
	if email == "" {
		email = fallbackEmail
	}

	record := &model.ProfileRecord{
		Email:      email,
		CreatedAt:  i.now(),
		UserID:     userID,
		Bookmarks:  []string{},
		SharedWith: []string{},
	}

	if err := i.writer.UpsertProfile(ctx, session.IDToken, record); err != nil {
		return model.NewProfileWriteError(err.Error())
	}

	i.logger.Info("user profile created",
		slog.String("user_id", userID),
		slog.String("email", email),
	)
	return nil
}
