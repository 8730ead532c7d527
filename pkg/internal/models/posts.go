package models

const (
	PostTypeQuestion = "question"
	PostTypeArticle  = "article"
	PostTypeLink     = "link"
)

const (
	PostStatusActive  = "active"
	PostStatusDraft   = "draft"
	PostStatusDeleted = "deleted"
)

type Post struct {
	BaseModel

	Author    string  `json:"author" gorm:"index"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Status    string  `json:"status" gorm:"index;default:active"`
	Type      string  `json:"type" gorm:"index"`
	URL       *string `json:"url,omitempty"`
	Anonymous bool    `json:"anonymous"`
	UpdatedBy string  `json:"updated_by"`

	// Denormalized counters, recomputed by the owning service after each
	// mutation rather than maintained by triggers.
	Score          int   `json:"score"`
	TotalViews     int64 `json:"total_views"`
	AnswersCount   int   `json:"answers_count"`
	CorrectAnswers int   `json:"correct_answers"`
	CommentsCount  int   `json:"comments_count"`

	// Scanned from the aggregate listing query only.
	Trend    float64 `json:"trend" gorm:"->;-:migration"`
	Favorite bool    `json:"favorite" gorm:"->;-:migration"`

	Tags        []Tag        `json:"tags" gorm:"many2many:post_tags"`
	Entities    []Entity     `json:"entities" gorm:"many2many:post_entities"`
	Answers     []Answer     `json:"answers,omitempty" gorm:"foreignKey:PostID"`
	Comments    []Comment    `json:"comments,omitempty" gorm:"foreignKey:PostID"`
	Attachments []Attachment `json:"attachments,omitempty" gorm:"foreignKey:PostID"`
}

type PostView struct {
	Author    string `json:"author" gorm:"primaryKey"`
	PostID    uint   `json:"post_id" gorm:"primaryKey"`
	CreatedAt int64  `json:"created_at" gorm:"autoCreateTime"`
}
