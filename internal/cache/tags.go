package cache

import "fmt"

// Tag builders for the entities the review workflow touches. The core only
// emits these opaque strings; whatever cache layer exists maps them to keys.

func ProfileTag(profileID string) string {
	return fmt.Sprintf("profile:%s", profileID)
}

func ProfilePageTag(profileID string) string {
	return fmt.Sprintf("profile:%s:page", profileID)
}

func ProfileReviewsTag(profileID string) string {
	return fmt.Sprintf("profile:%s:reviews", profileID)
}

func ProfileDashboardTag(profileID string) string {
	return fmt.Sprintf("profile:%s:dashboard", profileID)
}

func ServiceTag(serviceID string) string {
	return fmt.Sprintf("service:%s", serviceID)
}

func ServicePageTag(serviceID string) string {
	return fmt.Sprintf("service:%s:page", serviceID)
}

func ServiceReviewsTag(serviceID string) string {
	return fmt.Sprintf("service:%s:reviews", serviceID)
}

func AuthorReviewsTag(userID string) string {
	return fmt.Sprintf("user:%s:reviews", userID)
}

func ReviewTag(reviewID string) string {
	return fmt.Sprintf("review:%s", reviewID)
}
