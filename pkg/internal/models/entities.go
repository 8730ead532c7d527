package models

// An entity is an external catalog reference, e.g. "component:default/api".
// The database only keeps the ref string and the join rows pointing at it.
type Entity struct {
	BaseModel

	EntityRef string `json:"entity_ref" gorm:"uniqueIndex"`
	Posts     []Post `json:"posts,omitempty" gorm:"many2many:post_entities"`

	PostsCount     int64 `json:"posts_count" gorm:"->;-:migration"`
	FollowersCount int64 `json:"followers_count" gorm:"->;-:migration"`
}

type UserEntity struct {
	UserRef   string `json:"user_ref" gorm:"primaryKey"`
	EntityID  uint   `json:"entity_id" gorm:"primaryKey"`
	CreatedAt int64  `json:"created_at" gorm:"autoCreateTime"`
}
