package config

import (
	"fmt"

	"github.com/google/uuid"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ActiveCoursesKey returns the single fixed key holding the unfiltered
// active-courses catalog read-model.
func (r *CacheKeyStruct) ActiveCoursesKey() string {
	return "catalog:active_courses"
}

// LastViewedCourseKey returns the key for a user's last-viewed-course
// session projection.
func (r *CacheKeyStruct) LastViewedCourseKey(userID uuid.UUID) string {
	return fmt.Sprintf("session:%s:last_viewed_course", userID)
}

var CacheKey = NewCacheKeyStruct()
