package services

import (
	"github.com/google/uuid"
	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/models"
	"github.com/samber/lo"
)

// NewAttachment registers an upload; the binary itself is stored by an
// external system keyed by the returned uuid.
func NewAttachment(creator string, mimeType string) (models.Attachment, error) {
	item := models.Attachment{
		UUID:     uuid.New().String(),
		Creator:  creator,
		MimeType: mimeType,
	}
	err := database.C.Create(&item).Error
	return item, err
}

// BindAttachments points a batch of attachment rows at their owner.
func BindAttachments(items []models.Attachment, owner map[string]any) error {
	if len(items) == 0 {
		return nil
	}

	ids := lo.Map(items, func(item models.Attachment, _ int) string {
		return item.UUID
	})
	return database.C.Model(&models.Attachment{}).
		Where("uuid IN ?", ids).
		Updates(owner).Error
}

func GetAttachment(id string) (models.Attachment, error) {
	var item models.Attachment
	err := database.C.Where("uuid = ?", id).First(&item).Error
	return item, err
}

func DeleteAttachment(id string) error {
	return database.C.Where("uuid = ?", id).Delete(&models.Attachment{}).Error
}
