package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hitoshi/spinbux/internal/model"
)

// トークン検証の失敗理由。ログとメトリクスの内部分類にのみ使用し、
// HTTPレスポンスでは全て同一の401に集約する。
var (
	// ErrTokenMalformed はトークンの形式が不正であることを示す。
	ErrTokenMalformed = errors.New("token is malformed")
	// ErrTokenSignature は署名が一致しないことを示す。
	ErrTokenSignature = errors.New("token signature mismatch")
	// ErrTokenExpired はトークンの有効期限切れを示す。
	ErrTokenExpired = errors.New("token is expired")
)

// tokenPartCount はトークンを構成するフィールド数（userId.username.issuedAt.signature）。
const tokenPartCount = 4

// TokenService は自己完結型セッショントークンの発行と検証を行う。
// サーバー側に状態を持たないため、発行済みトークンの失効はできず、
// 有効期限超過によってのみ無効になる。
// 全メソッドは純粋計算であり、並行呼び出しに対して安全。
type TokenService struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewTokenService はTokenServiceを生成する。
// maxAgeには秒精度の有効期間を指定する（デフォルトポリシーは24時間）。
func NewTokenService(secret string, maxAge time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Issue はユーザーIDと表示名を束ねたセッショントークンを発行する。
// 形式: "<userId>.<username>.<issuedAt unix秒>.<hex HMAC-SHA256署名>"
// usernameに区切り文字 "." が含まれないことは呼び出し側が保証する
// （auth.Serviceが発行前にサニタイズする）。
func (s *TokenService) Issue(userID int64, username string) string {
	issuedAt := s.now().Unix()
	payload := fmt.Sprintf("%d.%s.%d", userID, username, issuedAt)
	return payload + "." + s.sign(payload)
}

// Verify はトークンを検証し、成功時に復元したクレームを返す。
// 失敗時はErrTokenMalformed / ErrTokenSignature / ErrTokenExpiredの
// いずれかを返すが、これは内部記録用であり、呼び出し側は外部に
// 失敗理由を露出してはならない。
func (s *TokenService) Verify(token string) (*model.TokenClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != tokenPartCount {
		return nil, ErrTokenMalformed
	}

	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, ErrTokenMalformed
	}
	username := parts[1]

	issuedAt, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return nil, ErrTokenMalformed
	}

	payload := fmt.Sprintf("%d.%s.%d", userID, username, issuedAt)
	if !hmac.Equal([]byte(s.sign(payload)), []byte(parts[3])) {
		return nil, ErrTokenSignature
	}

	// age > maxAge で無効。ちょうどmaxAge経過した時点ではまだ有効。
	age := s.now().Unix() - issuedAt
	if age > int64(s.maxAge.Seconds()) {
		return nil, ErrTokenExpired
	}

	return &model.TokenClaims{
		UserID:   userID,
		Username: username,
		IssuedAt: time.Unix(issuedAt, 0),
	}, nil
}

// DecodeUnverified はトークンを構文的に分解し、署名と有効期限を
// 検証せずにクレームを返す。リフレッシュ経路の互換動作として
// 意図的に残している（署名が壊れたトークンでも形式が正しければ
// リフレッシュできる）。他の用途では必ずVerifyを使うこと。
func (s *TokenService) DecodeUnverified(token string) (*model.TokenClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != tokenPartCount {
		return nil, ErrTokenMalformed
	}

	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, ErrTokenMalformed
	}

	issuedAt, _ := strconv.ParseInt(parts[2], 10, 64)

	return &model.TokenClaims{
		UserID:   userID,
		Username: parts[1],
		IssuedAt: time.Unix(issuedAt, 0),
	}, nil
}

// sign はペイロード文字列のhex HMAC-SHA256署名を計算する。
func (s *TokenService) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
