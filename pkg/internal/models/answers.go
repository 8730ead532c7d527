package models

type Answer struct {
	BaseModel

	PostID    uint   `json:"post_id" gorm:"index"`
	Author    string `json:"author" gorm:"index"`
	Content   string `json:"content"`
	Correct   bool   `json:"correct"`
	Status    string `json:"status" gorm:"index;default:active"`
	Anonymous bool   `json:"anonymous"`
	UpdatedBy string `json:"updated_by"`

	Score         int `json:"score"`
	CommentsCount int `json:"comments_count"`

	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:AnswerID"`
}
