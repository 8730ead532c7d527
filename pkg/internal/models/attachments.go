package models

// Attachment rows only track ownership; the binary lives elsewhere.
type Attachment struct {
	UUID      string `json:"uuid" gorm:"primaryKey"`
	Creator   string `json:"creator"`
	MimeType  string `json:"mime_type"`
	CreatedAt int64  `json:"created_at" gorm:"autoCreateTime"`

	PostID       *uint `json:"post_id,omitempty" gorm:"index"`
	AnswerID     *uint `json:"answer_id,omitempty" gorm:"index"`
	CollectionID *uint `json:"collection_id,omitempty" gorm:"index"`
}
