package suggest

// Source identifies how a candidate was surfaced.
type Source string

const (
	SourceRetrieval Source = "retrieval"
	SourceGraph     Source = "graph"
)

// Candidate is a single link or tag suggestion. The two concrete variants
// make the scoring rules structural: retrieval candidates always carry a
// similarity score, graph candidates never do.
type Candidate interface {
	CandidateTitle() string
	CandidateSource() Source
}

// RetrievalCandidate is a note surfaced directly by similarity retrieval.
// Wikilinks and backlinks come from the corpus metadata index, not from the
// individual chunk that matched.
type RetrievalCandidate struct {
	Title     string   `json:"title"`
	Score     float64  `json:"score"`
	Folder    string   `json:"folder,omitempty"`
	Wikilinks []string `json:"wikilinks,omitempty"`
	Backlinks []string `json:"backlinks,omitempty"`
	Source    Source   `json:"source"`
}

func (c RetrievalCandidate) CandidateTitle() string  { return c.Title }
func (c RetrievalCandidate) CandidateSource() Source { return SourceRetrieval }

// GraphCandidate is a note surfaced only through one-hop link traversal from
// the retrieval candidates. It did not arise from similarity and must never
// be compared numerically against scored candidates.
type GraphCandidate struct {
	Title  string `json:"title"`
	Source Source `json:"source"`
}

func (c GraphCandidate) CandidateTitle() string  { return c.Title }
func (c GraphCandidate) CandidateSource() Source { return SourceGraph }

// Result is the output of one suggestion request. Retrieval candidates come
// first in each list, ordered by score descending; graph candidates follow.
type Result struct {
	Links []Candidate `json:"suggested_links"`
	Tags  []Candidate `json:"suggested_tags"`
}

// TagTitles returns the titles of every suggested tag, in list order.
func (r *Result) TagTitles() []string {
	titles := make([]string, 0, len(r.Tags))
	for _, c := range r.Tags {
		titles = append(titles, c.CandidateTitle())
	}
	return titles
}

// LinkTitles returns the titles of retrieval-sourced link suggestions, in
// list order. Graph candidates are excluded; they are leads, not matches.
func (r *Result) LinkTitles() []string {
	var titles []string
	for _, c := range r.Links {
		if c.CandidateSource() == SourceRetrieval {
			titles = append(titles, c.CandidateTitle())
		}
	}
	return titles
}

// TopLinkScore returns the score of the highest-ranked retrieval-sourced
// link candidate, or 0 when there is none.
func (r *Result) TopLinkScore() float64 {
	if len(r.Links) == 0 {
		return 0
	}
	if rc, ok := r.Links[0].(RetrievalCandidate); ok {
		return rc.Score
	}
	return 0
}
