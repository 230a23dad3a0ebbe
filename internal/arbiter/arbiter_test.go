package arbiter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/streed/vault-suggest/internal/config"
	apperrors "github.com/streed/vault-suggest/internal/errors"
)

// newTestArbiter points an arbiter at a stub Ollama server that answers
// every generate call with the given response body.
func newTestArbiter(t *testing.T, handler http.HandlerFunc) (*Arbiter, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		OllamaEndpoint: server.URL,
		ArbiterModel:   "test-model",
		ArbiterMinTags: 3,
		ArbiterMaxTags: 6,
		NoteCharBudget: 3000,
	}
	return New(cfg), server
}

func ollamaReply(t *testing.T, decision string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"response": decision,
			"done":     true,
		})
	}
}

func TestArbitrateParsesDecision(t *testing.T) {
	arb, _ := newTestArbiter(t, ollamaReply(t,
		`{"existing_tags": ["machine-learning"], "new_tags": ["Diffusion Models"], "reasoning": "covers both"}`))

	decision, err := arb.Arbitrate(Request{
		Text:       "a note about diffusion",
		Vocabulary: []string{"machine-learning"},
	})
	if err != nil {
		t.Fatalf("Arbitrate failed: %v", err)
	}

	if want := []string{"machine-learning"}; !reflect.DeepEqual(decision.ExistingTags, want) {
		t.Errorf("ExistingTags = %v, want %v", decision.ExistingTags, want)
	}
	// Minted tags get slugified.
	if want := []string{"diffusion-models"}; !reflect.DeepEqual(decision.NewTags, want) {
		t.Errorf("NewTags = %v, want %v", decision.NewTags, want)
	}
	if want := []string{"machine-learning", "diffusion-models"}; !reflect.DeepEqual(decision.Total(), want) {
		t.Errorf("Total() = %v, want %v", decision.Total(), want)
	}
}

func TestArbitrateMalformedOutput(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not JSON", "I think the tags should be ml and ai"},
		{"JSON without tag fields", `{"reasoning": "hmm"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arb, _ := newTestArbiter(t, ollamaReply(t, tt.response))
			_, err := arb.Arbitrate(Request{Text: "text"})
			if !errors.Is(err, apperrors.ErrArbiterBadResponse) {
				t.Errorf("Expected ErrArbiterBadResponse, got %v", err)
			}
		})
	}
}

func TestArbitrateServerError(t *testing.T) {
	arb, _ := newTestArbiter(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	})

	_, err := arb.Arbitrate(Request{Text: "text"})
	if !errors.Is(err, apperrors.ErrArbiterUnavailable) {
		t.Errorf("Expected ErrArbiterUnavailable, got %v", err)
	}
}

func TestArbitrateConnectionRefused(t *testing.T) {
	cfg := &config.Config{
		OllamaEndpoint: "http://127.0.0.1:1",
		ArbiterModel:   "test-model",
		ArbiterMinTags: 3,
		ArbiterMaxTags: 6,
	}
	arb := New(cfg)

	_, err := arb.Arbitrate(Request{Text: "text"})
	if !errors.Is(err, apperrors.ErrArbiterUnavailable) {
		t.Errorf("Expected ErrArbiterUnavailable, got %v", err)
	}
}

func TestArbitratePromptContents(t *testing.T) {
	var prompt string
	arb, _ := newTestArbiter(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Prompt string `json:"prompt"`
			Format string `json:"format"`
		}
		_ = json.Unmarshal(body, &req)
		prompt = req.Prompt
		if req.Format != "json" {
			t.Errorf("Expected json format request, got %q", req.Format)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"response": `{"existing_tags": [], "new_tags": ["x"]}`,
			"done":     true,
		})
	})

	_, err := arb.Arbitrate(Request{
		Text:          "the note body",
		Vocabulary:    []string{"zeta", "alpha"},
		RetrievalTags: []string{"alpha"},
		TagContext:    map[string][]string{"alpha": {"Note One", "Note Two"}},
		Filename:      "dropped.txt",
	})
	if err != nil {
		t.Fatalf("Arbitrate failed: %v", err)
	}

	for _, want := range []string{
		"the note body",
		`["alpha","zeta"]`, // vocabulary sorted
		"dropped.txt",
		"alpha: Note One, Note Two",
		"Select 3 to 6 tags",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestArbitrateTruncatesLongText(t *testing.T) {
	var prompt string
	arb, _ := newTestArbiter(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		prompt = req.Prompt
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"response": `{"existing_tags": ["a"], "new_tags": []}`,
			"done":     true,
		})
	})

	long := strings.Repeat("x", 5000)
	if _, err := arb.Arbitrate(Request{Text: long}); err != nil {
		t.Fatalf("Arbitrate failed: %v", err)
	}

	if strings.Contains(prompt, strings.Repeat("x", 3001)) {
		t.Error("Text should be truncated to the character budget")
	}
	if !strings.Contains(prompt, strings.Repeat("x", 3000)) {
		t.Error("Truncation should keep the full budget worth of text")
	}
}

func TestNormalizeCapsAndDedupes(t *testing.T) {
	arb := &Arbiter{minTags: 3, maxTags: 4}
	d := &Decision{
		ExistingTags: []string{"ml", "ml", "ai", " systems "},
		NewTags:      []string{"ML", "Deep Learning!", "deep-learning", "extra-one", "extra-two"},
	}

	arb.normalize(d)

	if want := []string{"ml", "ai", "systems"}; !reflect.DeepEqual(d.ExistingTags, want) {
		t.Errorf("ExistingTags = %v, want %v", d.ExistingTags, want)
	}
	// Room for one minted tag; "ml" collides with an existing pick after
	// slugification and is dropped.
	if want := []string{"deep-learning"}; !reflect.DeepEqual(d.NewTags, want) {
		t.Errorf("NewTags = %v, want %v", d.NewTags, want)
	}
	if len(d.Total()) > 4 {
		t.Errorf("Total tags %d exceeds max 4", len(d.Total()))
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Deep Learning", "deep-learning"},
		{"  C++ Tips!  ", "c-tips"},
		{"already-fine", "already-fine"},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
