// Package identity はアイデンティティサービスのRESTクライアントを提供する。
// メール/パスワードによるサインインとサインアップのみを扱い、
// トークンのリフレッシュやOAuthフローはこのサービスの責務外とする。
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hitoshi/bukuma/internal/model"
)

const (
	signInEndpoint = "accounts:signInWithPassword"
	signUpEndpoint = "accounts:signUp"
)

// Client はアイデンティティサービスのクライアント。
// 成功レスポンスをSessionRecordへ、失敗を表示用エラーメッセージへ正規化する。
// 永続化は行わない。保存は呼び出し元の責務。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiKey     string
	baseURL    string // テスト用にエンドポイントを差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, apiKey, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// credentialsRequest はサインイン/サインアップ共通のリクエストボディ。
// returnSecureTokenは常にtrueを指定し、durableなトークンの発行を要求する。
type credentialsRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// authResponse はアイデンティティサービスのレスポンス。
// 成功時はトークン一式、失敗時はerror.messageのみが意味を持つ。
// expiresInは数値文字列として返ってくる。
type authResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	Email        string `json:"email"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Error        *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn はメール/パスワードでサインインし、SessionRecordを返す。
// 入力検証はネットワーク呼び出しの前にローカルで行い、
// 違反時はValidationErrorを返す（リクエストは一切発行しない）。
// サービス側の拒否と通信エラーは "Login failed: …" のAuthErrorに正規化する。
func (c *Client) SignIn(ctx context.Context, email, password string) (*model.SessionRecord, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, model.NewValidationError("Please enter both email and password")
	}

	record, err := c.authenticate(ctx, signInEndpoint, email, password)
	if err != nil {
		c.logger.Warn("sign-in failed",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, model.NewLoginFailedError(err.Error())
	}

	return record, nil
}

// SignUp はメール/パスワードでアカウントを作成し、SessionRecordを返す。
// SignInの検証に加えてパスワード確認の一致を要求する。
// サービス側の拒否と通信エラーは "Signup failed: …" のAuthErrorに正規化する。
func (c *Client) SignUp(ctx context.Context, email, password, confirmPassword string) (*model.SessionRecord, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, model.NewValidationError("Please enter both email and password")
	}
	if password != confirmPassword {
		return nil, model.NewValidationError("Passwords do not match")
	}

	record, err := c.authenticate(ctx, signUpEndpoint, email, password)
	if err != nil {
		c.logger.Warn("sign-up failed",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, model.NewSignupFailedError(err.Error())
	}

	return record, nil
}

// authenticate は資格情報を1回だけ送信し、レスポンスをSessionRecordへ写像する。
// リトライは行わない。最初の失敗がその試行の最終結果となる。
func (c *Client) authenticate(ctx context.Context, endpoint, email, password string) (*model.SessionRecord, error) {
	body, err := json.Marshal(credentialsRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/%s?key=%s", c.baseURL, endpoint, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// エラーボディも同じ形でデコードできるため、ステータスより先にパースする
	var parsed authResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if parsed.Error != nil && parsed.Error.Message != "" {
		return nil, fmt.Errorf("%s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity service returned status %d", resp.StatusCode)
	}

	// expiresInは数値文字列。パース不能な場合は0として保存する（期限は強制しない）
	expiresIn, err := strconv.Atoi(parsed.ExpiresIn)
	if err != nil {
		expiresIn = 0
	}

	return &model.SessionRecord{
		IDToken:      parsed.IDToken,
		RefreshToken: parsed.RefreshToken,
		Email:        parsed.Email,
		ExpiresIn:    expiresIn,
		LocalID:      parsed.LocalID,
	}, nil
}
