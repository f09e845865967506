// Package mocks provides in-memory implementations of the driven ports for
// service and handler tests.
package mocks

import "github.com/shelfwise/shelfwise-core/internal/core/ports/driven"

var (
	_ driven.UserStore           = (*MockUserStore)(nil)
	_ driven.BookStore           = (*MockBookStore)(nil)
	_ driven.PreferenceStore     = (*MockPreferenceStore)(nil)
	_ driven.AccessLogStore      = (*MockAccessLogStore)(nil)
	_ driven.ArtifactStore       = (*MockArtifactStore)(nil)
	_ driven.RecommendationCache = (*MockRecommendationCache)(nil)
	_ driven.CatalogScraper      = (*MockCatalogScraper)(nil)
)
