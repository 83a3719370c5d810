package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionKey returns the cache key holding an interview session snapshot.
func (r *CacheKeyStruct) SessionKey(sessionID string) string {
	return fmt.Sprintf("interview:session:%s", sessionID)
}

// SessionLockKey returns the cache key marking a session's in-flight submission.
func (r *CacheKeyStruct) SessionLockKey(sessionID string) string {
	return fmt.Sprintf("interview:session:%s:lock", sessionID)
}

var CacheKey = NewCacheKeyStruct()
