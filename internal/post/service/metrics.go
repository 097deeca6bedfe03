package service

import "blogspace/internal/observability/metrics"

func incrementPostsCreated() {
	metrics.PostsCreatedTotal.Inc()
}

func incrementPostsUpdated() {
	metrics.PostsUpdatedTotal.Inc()
}

func incrementPostsDeleted() {
	metrics.PostsDeletedTotal.Inc()
}

func incrementOwnershipDenied() {
	metrics.OwnershipDeniedTotal.Inc()
}
