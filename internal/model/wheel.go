package model

import "time"

// WheelSpin はルーレットのスピン結果1件を表す。
type WheelSpin struct {
	ID         string
	UserID     int64
	Prize      string
	PrizeValue int64
	KeysSpent  int
	CreatedAt  time.Time
}
