package qa

import (
	"context"
	"errors"
	"strings"
	"testing"

	"caselens/internal/domain"
)

type stubRetriever struct {
	results []domain.RetrievalResult
	err     error
}

func (s *stubRetriever) Retrieve(context.Context, string, int) ([]domain.RetrievalResult, error) {
	return s.results, s.err
}

type stubChat struct {
	calls    int
	answer   string
	err      error
	messages []domain.Message
}

func (s *stubChat) Complete(_ context.Context, messages []domain.Message) (string, error) {
	s.calls++
	s.messages = messages
	return s.answer, s.err
}

func cloudflareResults() []domain.RetrievalResult {
	return []domain.RetrievalResult{
		{
			Chunk:    domain.Chunk{ID: "02_cloudflare_mastercard_cyber.txt::c0", Filename: "02_cloudflare_mastercard_cyber.txt", Text: "Cloudflare blocks fraud."},
			Score:    0.91,
			Citation: "[Source: 02_cloudflare_mastercard_cyber.txt]",
		},
		{
			Chunk:    domain.Chunk{ID: "02_cloudflare_mastercard_cyber.txt::c1", Filename: "02_cloudflare_mastercard_cyber.txt", Text: "The partnership secures agentic payments."},
			Score:    0.84,
			Citation: "[Source: 02_cloudflare_mastercard_cyber.txt]",
		},
		{
			Chunk:    domain.Chunk{ID: "04_mastercard_10k_2024.txt::c7", Filename: "04_mastercard_10k_2024.txt", Text: "Revenue grew 12%."},
			Score:    0.40,
			Citation: "[Source: 04_mastercard_10k_2024.txt]",
		},
	}
}

func TestNoEvidenceShortCircuit(t *testing.T) {
	chat := &stubChat{answer: "should never be used"}
	a := New(&stubRetriever{}, chat, 5)

	result, err := a.Answer(context.Background(), "anything", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !result.NoIndex {
		t.Fatal("empty retrieval must set NoIndex")
	}
	if chat.calls != 0 {
		t.Fatalf("chat model must never be called without evidence, got %d calls", chat.calls)
	}
	if result.Answer == "" {
		t.Fatal("no-evidence answer should explain the state")
	}
}

func TestGroundedAnswer(t *testing.T) {
	chat := &stubChat{answer: "Cloudflare blocks fraud for agentic payments [Source: 02_cloudflare_mastercard_cyber.txt]."}
	a := New(&stubRetriever{results: cloudflareResults()}, chat, 5)

	result, err := a.Answer(context.Background(), "How does Cloudflare help?", nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.NoIndex {
		t.Fatal("NoIndex must be unset when evidence exists")
	}
	if result.Answer != chat.answer {
		t.Fatalf("answer should be the model text verbatim, got %q", result.Answer)
	}
	if chat.calls != 1 {
		t.Fatalf("expected exactly one generation call, got %d", chat.calls)
	}

	// Citations deduplicate in retrieval order.
	want := []string{"[Source: 02_cloudflare_mastercard_cyber.txt]", "[Source: 04_mastercard_10k_2024.txt]"}
	if len(result.Citations) != len(want) {
		t.Fatalf("expected %d citations, got %v", len(want), result.Citations)
	}
	for i := range want {
		if result.Citations[i] != want[i] {
			t.Fatalf("citation %d is %q, want %q", i, result.Citations[i], want[i])
		}
	}
	if len(result.Excerpts) != 3 {
		t.Fatalf("expected all retrieved excerpts in the result, got %d", len(result.Excerpts))
	}
}

func TestPromptComposition(t *testing.T) {
	chat := &stubChat{answer: "ok"}
	a := New(&stubRetriever{results: cloudflareResults()}, chat, 5)

	history := []domain.Message{
		{Role: domain.RoleUser, Content: "What is Agent Suite?"},
		{Role: domain.RoleAssistant, Content: "AI-native payments infrastructure."},
	}
	if _, err := a.Answer(context.Background(), "And how does Cloudflare fit in?", history); err != nil {
		t.Fatal(err)
	}

	msgs := chat.messages
	if msgs[0].Role != "system" {
		t.Fatalf("first message must be the system policy, got role %q", msgs[0].Role)
	}
	if msgs[1].Role != domain.RoleUser || msgs[2].Role != domain.RoleAssistant {
		t.Fatal("history must be prepended before the final user turn")
	}
	final := msgs[len(msgs)-1]
	if final.Role != domain.RoleUser {
		t.Fatalf("final message must carry the question, got role %q", final.Role)
	}
	if !strings.Contains(final.Content, "And how does Cloudflare fit in?") {
		t.Fatal("final message should contain the question")
	}
	if !strings.Contains(final.Content, "Cloudflare blocks fraud.") ||
		!strings.Contains(final.Content, "[Source: 02_cloudflare_mastercard_cyber.txt]") {
		t.Fatal("final message should contain citation-tagged excerpts")
	}
}

func TestMissingCredentials(t *testing.T) {
	a := New(&stubRetriever{err: domain.ErrMissingCredentials}, &stubChat{}, 5)
	result, err := a.Answer(context.Background(), "anything", nil)
	if err != nil {
		t.Fatalf("missing credentials must not surface as an error: %v", err)
	}
	if result.NoIndex {
		t.Fatal("missing credentials is not the no-index state")
	}
	if !strings.Contains(result.Answer, "OPENAI_API_KEY") {
		t.Fatalf("answer should tell the user how to fix it, got %q", result.Answer)
	}
}

func TestMissingChatModelKeepsExcerpts(t *testing.T) {
	a := New(&stubRetriever{results: cloudflareResults()}, nil, 5)
	result, err := a.Answer(context.Background(), "anything", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Excerpts) != 3 || len(result.Citations) == 0 {
		t.Fatal("retrieved evidence should survive a missing chat model")
	}
	if !strings.Contains(result.Answer, "OPENAI_API_KEY") {
		t.Fatalf("answer should explain the missing key, got %q", result.Answer)
	}
}

func TestGenerationFailureKeepsExcerpts(t *testing.T) {
	chat := &stubChat{err: errors.New("service unavailable")}
	a := New(&stubRetriever{results: cloudflareResults()}, chat, 5)

	result, err := a.Answer(context.Background(), "anything", nil)
	if err == nil {
		t.Fatal("generation failure must propagate as an error")
	}
	if len(result.Excerpts) != 3 || len(result.Citations) == 0 {
		t.Fatal("already-computed excerpts and citations must be returned with the error")
	}
}

func TestRetrievalFailurePropagates(t *testing.T) {
	a := New(&stubRetriever{err: errors.New("index corrupted")}, &stubChat{}, 5)
	if _, err := a.Answer(context.Background(), "anything", nil); err == nil {
		t.Fatal("unexpected retrieval errors must propagate")
	}
}
