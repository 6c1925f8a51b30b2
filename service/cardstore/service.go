package cardstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/viant/skillet/internal/clock"
	"github.com/viant/skillet/service/dao/store"
)

// Service is the card persistence contract consumed by the approval gate and
// the poll listeners.
type Service interface {
	// Create stores a new card; a missing CardID is assigned.
	Create(ctx context.Context, card *Card) error

	// Load returns a card by id, or nil when absent.
	Load(ctx context.Context, cardID string) (*Card, error)

	// UpdateStatus transitions a card to the supplied status.
	UpdateStatus(ctx context.Context, cardID string, status ActionStatus) error

	// List returns cards of the given type and status; empty values match all.
	List(ctx context.Context, actionType ActionType, status ActionStatus) ([]*Card, error)
}

// memoryService is the in-process Service implementation.
type memoryService struct {
	store *store.MemoryStore[string, Card]
}

// New creates an in-memory card store.
func New() Service {
	return &memoryService{
		store: store.NewMemoryStore[string, Card](func(card *Card) string { return card.CardID }),
	}
}

func (s *memoryService) Create(ctx context.Context, card *Card) error {
	if card == nil {
		return fmt.Errorf("card was nil")
	}
	if card.CardID == "" {
		card.CardID = uuid.New().String()
	}
	if card.ActionStatus == "" {
		card.ActionStatus = StatusPending
	}
	now := clock.Now()
	card.CreatedAt = now
	card.UpdatedAt = now
	// store a private copy so later caller mutations cannot leak in
	return s.store.Save(ctx, cloneCard(card))
}

func (s *memoryService) Load(ctx context.Context, cardID string) (*Card, error) {
	card, err := s.store.Load(ctx, cardID)
	if err != nil || card == nil {
		return nil, err
	}
	return cloneCard(card), nil
}

func (s *memoryService) UpdateStatus(ctx context.Context, cardID string, status ActionStatus) error {
	card, err := s.Load(ctx, cardID)
	if err != nil {
		return err
	}
	if card == nil {
		return fmt.Errorf("card %s not found", cardID)
	}
	card.ActionStatus = status
	card.UpdatedAt = clock.Now()
	return s.store.Save(ctx, card)
}

func (s *memoryService) List(ctx context.Context, actionType ActionType, status ActionStatus) ([]*Card, error) {
	cards, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]*Card, 0, len(cards))
	for _, card := range cards {
		if actionType != "" && card.ActionType != actionType {
			continue
		}
		if status != "" && card.ActionStatus != status {
			continue
		}
		matched = append(matched, cloneCard(card))
	}
	return matched, nil
}

// cloneCard copies a card so readers and writers never share a pointer.
func cloneCard(card *Card) *Card {
	clone := *card
	if card.ActionData != nil {
		clone.ActionData = make(map[string]interface{}, len(card.ActionData))
		for k, v := range card.ActionData {
			clone.ActionData[k] = v
		}
	}
	return &clone
}
