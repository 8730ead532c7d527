package database

import (
	"github.com/qetahub/qeta/pkg/internal/models"
	"gorm.io/gorm"
)

var AutoMaintainRange = []any{
	&models.Tag{},
	&models.Entity{},
	&models.Post{},
	&models.Answer{},
	&models.Comment{},
	&models.Collection{},
	&models.CollectionPost{},
	&models.Attachment{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(
		append(
			AutoMaintainRange,
			&models.PostVote{},
			&models.AnswerVote{},
			&models.PostView{},
			&models.UserTag{},
			&models.UserEntity{},
			&models.UserFavorite{},
			&models.UserFollow{},
			&models.TagExpert{},
			&models.GlobalStat{},
			&models.UserStat{},
		)...,
	); err != nil {
		return err
	}

	return nil
}
