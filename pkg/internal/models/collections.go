package models

import "gorm.io/datatypes"

// A collection holds posts either manually or through a declarative rule.
// When any of the rule arrays is non-empty, posts matching the rule are
// kept in sync automatically; manually added posts are never auto-removed.
type Collection struct {
	BaseModel

	Title       string  `json:"title"`
	Description string  `json:"description"`
	Owner       string  `json:"owner" gorm:"index"`
	HeaderImage *string `json:"header_image,omitempty"`

	RuleTags     datatypes.JSONSlice[string] `json:"rule_tags"`
	RuleUsers    datatypes.JSONSlice[string] `json:"rule_users"`
	RuleEntities datatypes.JSONSlice[string] `json:"rule_entities"`

	Posts []Post `json:"posts,omitempty" gorm:"-"`

	PostsCount int64 `json:"posts_count" gorm:"->;-:migration"`
}

type CollectionPost struct {
	CollectionID uint  `json:"collection_id" gorm:"primaryKey"`
	PostID       uint  `json:"post_id" gorm:"primaryKey"`
	Rank         int   `json:"rank"`
	Manual       bool  `json:"manual"`
	CreatedAt    int64 `json:"created_at" gorm:"autoCreateTime"`
}
