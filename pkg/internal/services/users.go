package services

import (
	"slices"
	"strings"

	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/models"
)

type UserSummary struct {
	UserRef      string `json:"user_ref"`
	TotalPosts   int64  `json:"total_posts"`
	TotalAnswers int64  `json:"total_answers"`
}

// ListUsers enumerates everyone who has authored a post or an answer.
// The service has no user table of its own; authors are just refs.
func ListUsers() ([]UserSummary, error) {
	byRef := map[string]*UserSummary{}

	var postCounts []struct {
		Author string
		Count  int64
	}
	if err := database.C.Model(&models.Post{}).
		Select("author, COUNT(*) AS count").
		Where("status <> ? AND anonymous = ?", models.PostStatusDeleted, false).
		Group("author").
		Scan(&postCounts).Error; err != nil {
		return nil, err
	}
	for _, row := range postCounts {
		byRef[row.Author] = &UserSummary{UserRef: row.Author, TotalPosts: row.Count}
	}

	var answerCounts []struct {
		Author string
		Count  int64
	}
	if err := database.C.Model(&models.Answer{}).
		Select("author, COUNT(*) AS count").
		Where("status <> ? AND anonymous = ?", models.PostStatusDeleted, false).
		Group("author").
		Scan(&answerCounts).Error; err != nil {
		return nil, err
	}
	for _, row := range answerCounts {
		if summary, ok := byRef[row.Author]; ok {
			summary.TotalAnswers = row.Count
		} else {
			byRef[row.Author] = &UserSummary{UserRef: row.Author, TotalAnswers: row.Count}
		}
	}

	out := make([]UserSummary, 0, len(byRef))
	for _, summary := range byRef {
		out = append(out, *summary)
	}
	slices.SortFunc(out, func(a, b UserSummary) int {
		return strings.Compare(a.UserRef, b.UserRef)
	})
	return out, nil
}
