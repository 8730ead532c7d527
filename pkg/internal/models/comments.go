package models

// A comment is attached to exactly one of a post or an answer.
type Comment struct {
	BaseModel

	Author  string `json:"author" gorm:"index"`
	Content string `json:"content"`
	Status  string `json:"status" gorm:"index;default:active"`

	PostID   *uint `json:"post_id,omitempty" gorm:"index"`
	AnswerID *uint `json:"answer_id,omitempty" gorm:"index"`
}
