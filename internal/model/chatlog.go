package model

import "time"

// ChatLog records one answered question for a session. Rows are written
// asynchronously by the chat log worker.
type ChatLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SessionID  string    `gorm:"size:64;not null;index" json:"session_id"`
	Question   string    `gorm:"type:text;not null" json:"question"`
	Answer     string    `gorm:"type:text;not null" json:"answer"`
	TokensUsed int       `gorm:"not null" json:"tokens_used"`
	CreatedAt  time.Time `json:"created_at"`
}
