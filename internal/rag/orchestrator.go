package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/askdocs/askdocs/internal/store"
)

// state tags the orchestrator's position in the answer flow. The flow is
// linear with one decision: Retrieve -> Decide -> {Generate | End}. It
// never loops or retries.
type state int

const (
	stateRetrieve state = iota
	stateDecide
	stateGenerate
	stateEnd
)

// retriever and composer are consumer-side views of the pipeline stages,
// kept minimal so tests can substitute them.
type retriever interface {
	Retrieve(ctx context.Context, query string) ([]store.SearchResult, error)
}

type composer interface {
	Answer(ctx context.Context, query string, results []store.SearchResult) (string, []string)
}

// ConversationStore is the persistence surface the orchestrator needs to
// resolve sessions and record interactions.
type ConversationStore interface {
	CreateSession(ctx context.Context) (*store.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*store.Session, error)
	RecordInteraction(ctx context.Context, sessionID uuid.UUID, question, answer string, citations []store.Citation) (*store.Interaction, error)
}

// Answer is the terminal output of one Ask call.
type Answer struct {
	Text          string
	SessionID     uuid.UUID
	InteractionID uuid.UUID
	Citations     []store.Citation
	DocumentNames []string
}

// Orchestrator runs the answer flow for one question and persists the
// resulting interaction before returning.
//
// Orchestrator is safe for concurrent use by multiple goroutines.
type Orchestrator struct {
	retriever retriever
	composer  composer
	conv      ConversationStore
	logger    *slog.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(r retriever, c composer, conv ConversationStore, logger *slog.Logger) (*Orchestrator, error) {
	if r == nil {
		return nil, fmt.Errorf("retriever is required")
	}
	if c == nil {
		return nil, fmt.Errorf("composer is required")
	}
	if conv == nil {
		return nil, fmt.Errorf("conversation store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{retriever: r, composer: c, conv: conv, logger: logger}, nil
}

// Ask answers a question within a session. A zero sessionID starts a new
// session; otherwise the session must exist (store.ErrNotFound if not).
//
// Retrieval or storage failures propagate to the caller. Generation
// failures do not: the composer absorbs them into a degraded answer, so a
// reachable store always produces a recorded interaction.
func (o *Orchestrator) Ask(ctx context.Context, query string, sessionID uuid.UUID) (*Answer, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	if sessionID == uuid.Nil {
		sess, err := o.conv.CreateSession(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating session: %w", err)
		}
		sessionID = sess.ID
	} else if _, err := o.conv.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	var (
		results []store.SearchResult
		text    string
		names   []string
	)

	for st := stateRetrieve; st != stateEnd; {
		switch st {
		case stateRetrieve:
			var err error
			results, err = o.retriever.Retrieve(ctx, query)
			if err != nil {
				return nil, err
			}
			st = stateDecide

		case stateDecide:
			if len(results) == 0 {
				text = NoInformationResponse
				st = stateEnd
				break
			}
			st = stateGenerate

		case stateGenerate:
			text, names = o.composer.Answer(ctx, query, results)
			st = stateEnd
		}
	}

	citations := make([]store.Citation, len(results))
	for i, r := range results {
		citations[i] = store.Citation{
			ChunkID:      r.ChunkID,
			DocumentName: r.DocumentName,
			Similarity:   r.Similarity,
			Rank:         i + 1,
		}
	}

	inter, err := o.conv.RecordInteraction(ctx, sessionID, query, text, citations)
	if err != nil {
		return nil, fmt.Errorf("recording interaction: %w", err)
	}

	o.logger.Info("answered question",
		"session_id", sessionID,
		"interaction_id", inter.ID,
		"citations", len(citations))

	return &Answer{
		Text:          text,
		SessionID:     sessionID,
		InteractionID: inter.ID,
		Citations:     citations,
		DocumentNames: names,
	}, nil
}
