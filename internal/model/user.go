// Package model はドメインモデルを定義する。
package model

import "time"

// User はミニアプリの利用ユーザーを表す。
// IDはTelegramが発行する数値ユーザーIDをそのまま主キーとして使用する。
type User struct {
	ID            int64
	Username      string
	Referrer      *int64
	WalletAddress string
	Balance       int64
	TotalKeys     int
	TotalSpins    int
	Wins          int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TokenClaims はセッショントークンから復元される識別情報を表す。
// トークン検証に成功したリクエストでのみ生成される。
type TokenClaims struct {
	UserID   int64
	Username string
	IssuedAt time.Time
}
