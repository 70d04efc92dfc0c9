package model

import "time"

type Admin struct {
	TelegramID int64     `db:"telegram_id" json:"telegram_id"`
	Username   string    `db:"username" json:"username"`
	AddedAt    time.Time `db:"added_at" json:"added_at"`
}
