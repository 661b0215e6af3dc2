// Package fetch downloads web pages and distills them into the parts
// the crawler consumes: readable main-content text, outbound links, and
// publication metadata.
//
// The Fetcher performs the HTTP work with rotating browser User-Agents
// and a response size cap; the parser extracts links from the raw
// markup, pulls publication dates from meta tags, and strips navigation
// and boilerplate with a readability pass.
package fetch
