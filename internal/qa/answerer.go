package qa

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"caselens/internal/domain"
)

const systemPrompt = `You are a research assistant for an equity case study on Mastercard (NYSE: MA).
Answer questions using ONLY the case document excerpts supplied with each question.
If the excerpts do not contain enough information to answer, say so explicitly instead of guessing.
Cite the bracketed source labels inline whenever you use an excerpt.
Keep answers concise and specific.`

const noEvidenceAnswer = "No document index is available yet. Fetch and ingest the case documents, " +
	"then rebuild the index before asking questions."

const noCredentialsAnswer = "OpenAI API key not configured. Set OPENAI_API_KEY in your environment " +
	"or .env file to enable grounded answers."

// Retriever is the slice of the retrieval component the answerer needs.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]domain.RetrievalResult, error)
}

// Answerer produces grounded answers with citations. Each question is
// independent; conversation history is owned by the caller and passed
// in per call.
type Answerer struct {
	retriever Retriever
	chat      domain.ChatModel
	topK      int
}

// New creates an answerer. A nil chat model means no credentials are
// configured and questions get an explanatory answer instead of a call.
func New(retriever Retriever, chat domain.ChatModel, topK int) *Answerer {
	if topK <= 0 {
		topK = 5
	}
	return &Answerer{retriever: retriever, chat: chat, topK: topK}
}

// Answer retrieves evidence for the question and asks the chat model
// for a grounded answer. With zero retrieved chunks it short-circuits:
// NoIndex is set and the chat model is never called, so the grounding
// contract holds even where the model would happily improvise. A
// generation failure still returns the retrieved excerpts and citations
// alongside the error so the caller can show partial value.
func (a *Answerer) Answer(ctx context.Context, question string, history []domain.Message) (domain.AnswerResult, error) {
	chunks, err := a.retriever.Retrieve(ctx, question, a.topK)
	if err != nil {
		if errors.Is(err, domain.ErrMissingCredentials) {
			return domain.AnswerResult{Answer: noCredentialsAnswer}, nil
		}
		return domain.AnswerResult{}, err
	}
	if len(chunks) == 0 {
		return domain.AnswerResult{Answer: noEvidenceAnswer, NoIndex: true}, nil
	}

	result := domain.AnswerResult{
		Citations: citationSet(chunks),
		Excerpts:  chunks,
	}
	if a.chat == nil {
		result.Answer = noCredentialsAnswer
		return result, nil
	}

	messages := make([]domain.Message, 0, len(history)+2)
	messages = append(messages, domain.Message{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, domain.Message{Role: domain.RoleUser, Content: userPrompt(question, chunks)})

	answer, err := a.chat.Complete(ctx, messages)
	if err != nil {
		return result, fmt.Errorf("generate answer: %w", err)
	}
	result.Answer = answer
	return result, nil
}

// userPrompt tags every excerpt with its citation label so the model
// can quote the labels back.
func userPrompt(question string, chunks []domain.RetrievalResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nCase document excerpts:\n", question)
	for i, c := range chunks {
		fmt.Fprintf(&b, "\n--- Excerpt %d %s ---\n%s\n", i+1, c.Citation, c.Text)
	}
	b.WriteString("\nAnswer using only the excerpts above. Cite sources where used.")
	return b.String()
}

// citationSet deduplicates citation labels preserving retrieval order.
func citationSet(chunks []domain.RetrievalResult) []string {
	seen := make(map[string]struct{}, len(chunks))
	var out []string
	for _, c := range chunks {
		if _, ok := seen[c.Citation]; ok {
			continue
		}
		seen[c.Citation] = struct{}{}
		out = append(out, c.Citation)
	}
	return out
}
