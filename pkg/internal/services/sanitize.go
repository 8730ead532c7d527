package services

import "github.com/microcosm-cc/bluemonday"

var contentPolicy = bluemonday.UGCPolicy()

// SanitizeContent strips script-bearing markup from user-authored bodies
// before they are stored.
func SanitizeContent(content string) string {
	return contentPolicy.Sanitize(content)
}
