// Package auth はTelegram initData検証とセッショントークン管理を提供する。
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// initDataSecretKey はWeb App検証鍵の導出に使う固定文字列。
// Telegram Mini Appsの仕様で定められている定数。
const initDataSecretKey = "WebAppData"

// TelegramUser はinitDataのuserフィールドに含まれるユーザー情報を表す。
type TelegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// DisplayName はトークンとプロフィールに使う表示名を返す。
// username → first_name → "user<id>" の順でフォールバックする。
func (u *TelegramUser) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return fmt.Sprintf("user%d", u.ID)
}

// VerifyInitData はTelegramが署名したinitDataペイロードを検証する。
//
// 検証手順:
//  1. initDataをクエリ文字列としてパースする。hashフィールドが無い、
//     またはパースできない場合はfalseを返す（例外は投げない）。
//  2. hashを除いた全フィールドをキーのバイト昇順にソートし、
//     "key=value" を改行で連結したチェック文字列を作る。
//  3. 固定文字列 "WebAppData" を鍵としてbotTokenのHMAC-SHA256を取り、
//     その生バイト列を検証鍵とする。
//  4. 検証鍵でチェック文字列のHMAC-SHA256を計算し、hex表現が
//     hashフィールドと一致すればtrueを返す。
//
// 検証失敗とパース失敗は呼び出し側から区別できない（意図した設計）。
func VerifyInitData(rawInitData, botToken string) bool {
	values, err := url.ParseQuery(rawInitData)
	if err != nil {
		return false
	}

	claimed := values.Get("hash")
	if claimed == "" {
		return false
	}
	values.Del("hash")

	checkString := buildCheckString(values)

	mac := hmac.New(sha256.New, []byte(initDataSecretKey))
	mac.Write([]byte(botToken))
	secret := mac.Sum(nil)

	mac = hmac.New(sha256.New, secret)
	mac.Write([]byte(checkString))
	computed := hex.EncodeToString(mac.Sum(nil))

	// hex文字列同士の定数時間比較
	return hmac.Equal([]byte(computed), []byte(claimed))
}

// buildCheckString は署名対象の正規化チェック文字列を構築する。
// キーをバイト昇順にソートし、同一キーの複数値は出現順を維持する。
// 末尾に改行は付けない。
func buildCheckString(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range values[k] {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(v)
		}
	}
	return b.String()
}

// ParseInitDataUser はinitDataからJSONエンコードされたuserフィールドを取り出す。
// 署名の検証は行わない。VerifyInitDataの成功後に呼び出すこと。
func ParseInitDataUser(rawInitData string) (*TelegramUser, error) {
	values, err := url.ParseQuery(rawInitData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse init data: %w", err)
	}

	raw := values.Get("user")
	if raw == "" {
		return nil, fmt.Errorf("init data has no user field")
	}

	var user TelegramUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("failed to decode user field: %w", err)
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("user field has no id")
	}

	return &user, nil
}
