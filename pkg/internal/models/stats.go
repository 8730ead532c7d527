package models

import "time"

type GlobalStat struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Date          time.Time `json:"date" gorm:"index"`
	TotalPosts    int64     `json:"total_posts"`
	TotalAnswers  int64     `json:"total_answers"`
	TotalComments int64     `json:"total_comments"`
	TotalVotes    int64     `json:"total_votes"`
	TotalTags     int64     `json:"total_tags"`
	TotalEntities int64     `json:"total_entities"`
	TotalUsers    int64     `json:"total_users"`
}

type UserStat struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserRef        string    `json:"user_ref" gorm:"index"`
	Date           time.Time `json:"date" gorm:"index"`
	TotalPosts     int64     `json:"total_posts"`
	TotalAnswers   int64     `json:"total_answers"`
	TotalComments  int64     `json:"total_comments"`
	TotalVotes     int64     `json:"total_votes"`
	TotalFollowers int64     `json:"total_followers"`
}
