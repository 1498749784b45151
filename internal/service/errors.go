package service

import "fmt"

// EnrichmentError is the only fatal pipeline outcome: the primary profile
// fetch failed. Every other upstream problem degrades the response instead
// of failing it.
type EnrichmentError struct {
	Slug  string
	Cause error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("overlay enrichment for %q failed: %v", e.Slug, e.Cause)
}

func (e *EnrichmentError) Unwrap() error { return e.Cause }
