package models

// Vote rows are unique per (author, target); re-voting replaces the row.
type PostVote struct {
	Author    string `json:"author" gorm:"primaryKey"`
	PostID    uint   `json:"post_id" gorm:"primaryKey"`
	Score     int    `json:"score"`
	CreatedAt int64  `json:"created_at" gorm:"autoCreateTime"`
}

type AnswerVote struct {
	Author    string `json:"author" gorm:"primaryKey"`
	AnswerID  uint   `json:"answer_id" gorm:"primaryKey"`
	Score     int    `json:"score"`
	CreatedAt int64  `json:"created_at" gorm:"autoCreateTime"`
}
