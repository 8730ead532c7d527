package services

import (
	"sync"

	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/models"
	"gorm.io/gorm/clause"
)

var (
	postViewQueueLock sync.Mutex
	postViewQueue     []models.PostView
)

func AddPostView(post models.Post, userRef string) {
	postViewQueueLock.Lock()
	defer postViewQueueLock.Unlock()
	postViewQueue = append(postViewQueue, models.PostView{
		Author: userRef,
		PostID: post.ID,
	})
}

// FlushPostViews drains the queue into the views table and refreshes the
// denormalized total on each touched post. Runs from the minutely cron
// job.
func FlushPostViews() {
	postViewQueueLock.Lock()
	if len(postViewQueue) == 0 {
		postViewQueueLock.Unlock()
		return
	}
	workingQueue := postViewQueue
	postViewQueue = nil
	postViewQueueLock.Unlock()

	updateRequiredPost := make(map[uint]bool)
	for _, item := range workingQueue {
		updateRequiredPost[item.PostID] = true
	}

	_ = database.C.Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(workingQueue, 1000).Error

	for id := range updateRequiredPost {
		var count int64
		if err := database.C.Model(&models.PostView{}).Where("post_id = ?", id).Count(&count).Error; err != nil {
			continue
		}
		database.C.Model(&models.Post{}).Where("id = ?", id).Update("total_views", count)
	}
}
