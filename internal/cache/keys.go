package cache

import "fmt"

const progressPrefix = "quiz:progress:"

// UserProgressKey is the cache key for a user's progress listing.
func UserProgressKey(userID string) string {
	return progressPrefix + userID
}

// AllProgressPattern matches every cached progress listing.
func AllProgressPattern() string {
	return fmt.Sprintf("%s*", progressPrefix)
}
