// Package model defines the data structures shared across the crawler:
// fetched pages, extracted content records, content fingerprints, work
// items, and per-run statistics.
//
// These types are intentionally free of behavior that touches the network
// or the database. They are constructed by the collaborator packages
// (fetch, ai, search, database) and consumed by the crawler core.
package model
