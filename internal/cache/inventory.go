package cache

import (
	"fmt"
	"time"
)

const (
	ApprovedFeedKey = "posts:approved"
	PostKeyPrefix   = "post:%d"
)

const (
	// DefaultFeedTTL bounds staleness if an invalidation is lost.
	DefaultFeedTTL = 30 * time.Second
)

// PostKey is the cache key of a single post.
func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}
