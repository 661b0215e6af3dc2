// Package ai implements the generative collaborator of the crawler:
// relevance classification, structured content extraction, follow-up
// query and link suggestion, and search-result ranking, all backed by
// an OpenAI-compatible chat API.
//
// Every call goes through the crawler's rate limiter, so pacing and
// backoff policy live in one place. Responses are treated as untrusted:
// JSON is tolerantly decoded (markdown fences stripped, numbered keys
// cleaned), and extraction falls back to a raw-text record rather than
// discarding a page the model already judged relevant.
package ai
