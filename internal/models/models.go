package models

import "time"

type User struct {
	ID             int64
	Email          string
	Username       string
	PassHash       []byte
	ResetTokenHash string     // SHA-256 hex of the raw reset token, empty when none pending
	ResetExpiresAt *time.Time // nil when no reset pending
	CreatedAt      time.Time
}

type SavedArticle struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	Title             string    `json:"title"`
	URL               string    `json:"url"`
	SourceName        string    `json:"source_name,omitempty"`
	ImageURL          string    `json:"image_url,omitempty"`
	OriginalContent   string    `json:"original_content"`
	SummarizedContent string    `json:"summarized_content"`
	SavedAt           time.Time `json:"saved_at"`
}
