package arbiter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/streed/vault-suggest/internal/config"
	apperrors "github.com/streed/vault-suggest/internal/errors"
	"github.com/streed/vault-suggest/internal/logger"
)

// Arbiter asks a local Ollama model to pick tags when the retrieval layer
// came back thin. It is stateless between calls; every invocation carries
// the full vocabulary.
type Arbiter struct {
	endpoint   string
	model      string
	minTags    int
	maxTags    int
	charBudget int
	httpClient *http.Client
}

// Request is one arbitration call. Vocabulary is sorted before prompting so
// identical inputs always produce identical prompts. RetrievalTags are
// context only, not binding. TagContext and Filename are optional grounding.
type Request struct {
	Text          string
	Vocabulary    []string
	RetrievalTags []string
	TagContext    map[string][]string
	Filename      string
}

// Decision is the arbiter's structured answer. ExistingTags are vocabulary
// members; NewTags are freshly minted, lowercase-hyphenated.
type Decision struct {
	ExistingTags []string `json:"existing_tags"`
	NewTags      []string `json:"new_tags"`
	Reasoning    string   `json:"reasoning"`
}

type ollamaRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Format  string                 `json:"format,omitempty"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func New(cfg *config.Config) *Arbiter {
	return &Arbiter{
		endpoint:   cfg.OllamaEndpoint,
		model:      cfg.ArbiterModel,
		minTags:    cfg.ArbiterMinTags,
		maxTags:    cfg.ArbiterMaxTags,
		charBudget: cfg.NoteCharBudget,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Arbitrate selects between minTags and maxTags tags for the given text.
// Transport failures wrap ErrArbiterUnavailable; output that does not parse
// into a Decision wraps ErrArbiterBadResponse. Neither is ever swallowed
// here; the caller decides whether to retry or fall back to retrieval-only
// tags.
func (a *Arbiter) Arbitrate(req Request) (*Decision, error) {
	prompt := a.buildPrompt(req)

	logger.Debug("Sending arbitration request to Ollama (model: %s)", a.model)
	raw, err := a.callOllama(prompt)
	if err != nil {
		return nil, err
	}

	var decision Decision
	if err := json.Unmarshal([]byte(raw), &decision); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrArbiterBadResponse, err)
	}
	if decision.ExistingTags == nil && decision.NewTags == nil {
		return nil, fmt.Errorf("%w: no tag fields in response", apperrors.ErrArbiterBadResponse)
	}

	a.normalize(&decision)
	logger.Debug("Arbiter chose %d existing and %d new tags",
		len(decision.ExistingTags), len(decision.NewTags))
	return &decision, nil
}

// Total returns every chosen tag, existing first.
func (d *Decision) Total() []string {
	return append(append([]string{}, d.ExistingTags...), d.NewTags...)
}

func (a *Arbiter) buildPrompt(req Request) string {
	vocab := append([]string{}, req.Vocabulary...)
	sort.Strings(vocab)
	vocabJSON, _ := json.Marshal(vocab)
	retrievalJSON, _ := json.Marshal(req.RetrievalTags)

	var b strings.Builder
	b.WriteString("You are a tagging system for a personal knowledge base.\n\n")
	b.WriteString("Given the following note content and a list of all available tags,\n")
	b.WriteString("select the most relevant tags for this note.\n\n")

	if req.Filename != "" {
		fmt.Fprintf(&b, "Source file: %s\n\n", req.Filename)
	}

	fmt.Fprintf(&b, "Note content:\n%s\n\n", truncate(req.Text, a.charBudget))
	fmt.Fprintf(&b, "Available tags:\n%s\n\n", vocabJSON)

	if len(req.TagContext) > 0 {
		b.WriteString("How some tags are used in the vault (tag: notes that reference it):\n")
		for _, tag := range sortedContextTags(req.TagContext) {
			fmt.Fprintf(&b, "- %s: %s\n", tag, strings.Join(req.TagContext[tag], ", "))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Tags already suggested by retrieval (may or may not be correct):\n%s\n\n", retrievalJSON)

	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "- Select %d to %d tags total.\n", a.minTags, a.maxTags)
	b.WriteString("- Choose from the available tags list whenever possible.\n")
	b.WriteString("- Only propose a NEW tag if no existing tag covers the concept.\n")
	b.WriteString("- New tags must use lowercase-with-hyphens format.\n")
	b.WriteString("- Return valid JSON only, no other text.\n\n")
	b.WriteString("Return format:\n")
	b.WriteString(`{"existing_tags": ["tag1", "tag2"], "new_tags": ["tag3"], "reasoning": "brief explanation of choices"}`)

	return b.String()
}

func (a *Arbiter) callOllama(prompt string) (string, error) {
	reqBody := ollamaRequest{
		Model:  a.model,
		Prompt: prompt,
		Stream: false,
		Format: "json",
		Options: map[string]interface{}{
			"temperature": 0.0,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := a.httpClient.Post(a.endpoint+"/api/generate", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrArbiterUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: Ollama returned status %d", apperrors.ErrArbiterUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrArbiterUnavailable, err)
	}

	var ollamaResp ollamaResponse
	if err := json.Unmarshal(body, &ollamaResp); err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrArbiterBadResponse, err)
	}

	return strings.TrimSpace(ollamaResp.Response), nil
}

// normalize cleans minted tags into lowercase-hyphenated form, deduplicates
// against existing picks, and caps the total at maxTags with existing tags
// taking priority.
func (a *Arbiter) normalize(d *Decision) {
	seen := make(map[string]bool)

	existing := make([]string, 0, len(d.ExistingTags))
	for _, tag := range d.ExistingTags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		existing = append(existing, tag)
	}

	minted := make([]string, 0, len(d.NewTags))
	for _, tag := range d.NewTags {
		tag = slugify(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		minted = append(minted, tag)
	}

	if len(existing) > a.maxTags {
		existing = existing[:a.maxTags]
	}
	if room := a.maxTags - len(existing); len(minted) > room {
		minted = minted[:room]
	}

	d.ExistingTags = existing
	d.NewTags = minted
}

var nonSlugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	tag = nonSlugPattern.ReplaceAllString(tag, "-")
	return strings.Trim(tag, "-")
}

// truncate cuts text at a fixed rune budget. The cut point depends only on
// the budget, never on content, so identical inputs always truncate
// identically.
func truncate(text string, budget int) string {
	if budget <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}
	return string(runes[:budget])
}

func sortedContextTags(context map[string][]string) []string {
	tags := make([]string, 0, len(context))
	for tag := range context {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
