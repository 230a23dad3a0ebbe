package suggest

// ShouldEscalate decides whether cheap retrieval was sufficient or the tag
// arbiter should be consulted. It escalates when the retrieval layer found
// fewer tags than minTags, or when the best link score sits below
// minConfidence (0 when there are no links at all).
//
// Tag candidates' own scores are ignored here; only the top link score
// counts, matching the long-standing behavior of the pipeline.
//
// This is a pure decision: it performs no calls and has no side effects.
// Both thresholds come from configuration.
func ShouldEscalate(result *Result, minTags int, minConfidence float64) bool {
	return len(result.Tags) < minTags || result.TopLinkScore() < minConfidence
}
