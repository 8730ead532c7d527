package models

type UserFavorite struct {
	UserRef   string `json:"user_ref" gorm:"primaryKey"`
	PostID    uint   `json:"post_id" gorm:"primaryKey"`
	CreatedAt int64  `json:"created_at" gorm:"autoCreateTime"`
}

type UserFollow struct {
	UserRef     string `json:"user_ref" gorm:"primaryKey"`
	FollowedRef string `json:"followed_ref" gorm:"primaryKey"`
	CreatedAt   int64  `json:"created_at" gorm:"autoCreateTime"`
}
