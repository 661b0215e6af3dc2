// Package search turns crawl queries into candidate URLs using the
// Google Custom Search JSON API.
//
// Queries that ask for fresh material are restricted to the last month
// first; when that returns too little, the search is retried without
// the restriction and the result sets merged. Results are reordered by
// the generative ranker before being handed to the crawler. Provider
// failures degrade to an empty result list so a flaky search API never
// ends a crawl.
package search
