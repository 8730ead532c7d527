package models

type Tag struct {
	BaseModel

	Tag         string `json:"tag" gorm:"uniqueIndex" validate:"lowercase"`
	Description string `json:"description"`
	Posts       []Post `json:"posts,omitempty" gorm:"many2many:post_tags"`

	PostsCount     int64 `json:"posts_count" gorm:"->;-:migration"`
	FollowersCount int64 `json:"followers_count" gorm:"->;-:migration"`
}

type UserTag struct {
	UserRef   string `json:"user_ref" gorm:"primaryKey"`
	TagID     uint   `json:"tag_id" gorm:"primaryKey"`
	CreatedAt int64  `json:"created_at" gorm:"autoCreateTime"`
}

type TagExpert struct {
	TagID     uint   `json:"tag_id" gorm:"primaryKey"`
	UserRef   string `json:"user_ref" gorm:"primaryKey"`
	CreatedAt int64  `json:"created_at" gorm:"autoCreateTime"`
}
