package suggest

import "testing"

func resultWith(numTags int, topScore float64) *Result {
	r := &Result{Links: []Candidate{}, Tags: []Candidate{}}
	if topScore > 0 {
		r.Links = append(r.Links, RetrievalCandidate{Title: "Link", Score: topScore})
	}
	for i := 0; i < numTags; i++ {
		r.Tags = append(r.Tags, GraphCandidate{Title: "tag"})
	}
	return r
}

func TestShouldEscalate(t *testing.T) {
	tests := []struct {
		name          string
		numTags       int
		topScore      float64
		minTags       int
		minConfidence float64
		want          bool
	}{
		{"enough tags, confident link", 3, 0.8, 3, 0.4, false},
		{"too few tags", 2, 0.8, 3, 0.4, true},
		{"weak top link", 3, 0.3, 3, 0.4, true},
		{"both thin", 0, 0.0, 3, 0.4, true},
		{"no links at all counts as zero score", 5, 0.0, 3, 0.4, true},
		{"exact thresholds do not escalate", 3, 0.4, 3, 0.4, false},
		{"zero thresholds never escalate", 0, 0.0, 0, 0.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := resultWith(tt.numTags, tt.topScore)
			got := ShouldEscalate(r, tt.minTags, tt.minConfidence)
			if got != tt.want {
				t.Errorf("ShouldEscalate(%d tags, %.2f score, min %d/%.2f) = %v, want %v",
					tt.numTags, tt.topScore, tt.minTags, tt.minConfidence, got, tt.want)
			}
		})
	}
}

// Raising either threshold can only turn a non-escalation into an
// escalation, never the reverse.
func TestShouldEscalateMonotonicity(t *testing.T) {
	r := resultWith(3, 0.5)

	for minTags := 0; minTags <= 6; minTags++ {
		prev := false
		for _, minConfidence := range []float64{0.0, 0.2, 0.4, 0.5, 0.6, 0.9} {
			got := ShouldEscalate(r, minTags, minConfidence)
			if prev && !got {
				t.Fatalf("Escalation flipped off as minConfidence rose (minTags=%d, minConfidence=%.1f)",
					minTags, minConfidence)
			}
			prev = got
		}
	}

	for _, minConfidence := range []float64{0.0, 0.4, 0.9} {
		prev := false
		for minTags := 0; minTags <= 6; minTags++ {
			got := ShouldEscalate(r, minTags, minConfidence)
			if prev && !got {
				t.Fatalf("Escalation flipped off as minTags rose (minTags=%d, minConfidence=%.1f)",
					minTags, minConfidence)
			}
			prev = got
		}
	}
}
