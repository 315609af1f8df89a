// Package security はアプリケーションのセキュリティ機能を提供する。
//
// NameSanitizerService はTelegramペイロードやプロフィール更新経由で
// 入ってくる表示名をサニタイズし、XSSとトークン構文の破壊を防ぐ。
package security

import (
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// maxUsernameLength は表示名の最大長（rune数）。
const maxUsernameLength = 64

// NameSanitizerService は表示名サニタイズ機能のインターフェースを定義する。
// ユーザー作成時とプロフィール更新時の両方で使用される。
type NameSanitizerService interface {
	// SanitizeUsername は表示名をサニタイズして返す。
	// HTMLタグを全て除去し、制御文字と前後の空白を取り除く。
	// セッショントークンの区切り文字 "." は表示名に含められないため
	// 併せて除去する。64文字を超える場合は切り詰める。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeUsername(raw string) string
}

// nameSanitizer はNameSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフに動作する。
type nameSanitizer struct {
	policy *bluemonday.Policy
}

// NewNameSanitizer はNameSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは全てのHTML要素と属性を除去する。
func NewNameSanitizer() *nameSanitizer {
	return &nameSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeUsername は表示名をサニタイズして返す。
func (s *nameSanitizer) SanitizeUsername(raw string) string {
	cleaned := s.policy.Sanitize(raw)

	// トークン区切り文字と制御文字を除去
	cleaned = strings.Map(func(r rune) rune {
		if r == '.' || unicode.IsControl(r) {
			return -1
		}
		return r
	}, cleaned)

	cleaned = strings.TrimSpace(cleaned)

	runes := []rune(cleaned)
	if len(runes) > maxUsernameLength {
		cleaned = string(runes[:maxUsernameLength])
	}

	return cleaned
}

// compile-time interface check
var _ NameSanitizerService = (*nameSanitizer)(nil)
