package memory

import (
	"context"
	"errors"

	"github.com/viant/skillet/internal/clock"
	"github.com/viant/skillet/model"
	"github.com/viant/skillet/model/execution"
	"github.com/viant/skillet/service/approval"
	"github.com/viant/skillet/service/cardstore"
	"github.com/viant/skillet/service/dao/store"
	"github.com/viant/skillet/service/messaging"
	qmem "github.com/viant/skillet/service/messaging/memory"
)

type service struct {
	cards   cardstore.Service
	pending approval.Store
	events  messaging.Queue[approval.Event]
}

func pendingKey(p *approval.PendingApproval) string { return p.CardID }

// New creates an in-memory approval gate backed by the supplied card store.
// Lifecycle events are published lossily - with no consumer attached the
// queue drops its oldest entries rather than ever blocking the gate.
func New(cards cardstore.Service, options ...Option) approval.Service {
	eventConfig := qmem.DefaultConfig()
	eventConfig.DropOldest = true
	ret := &service{
		cards:   cards,
		pending: store.NewMemoryStore[string, approval.PendingApproval](pendingKey),
		events:  qmem.NewQueue[approval.Event](eventConfig),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (s *service) Defer(ctx context.Context, skill *model.SkillDefinition, execCtx *execution.Context) (*execution.Result, error) {
	if skill == nil {
		return nil, errors.New("skill was nil")
	}
	if execCtx == nil {
		execCtx = execution.NewContext("", "")
	}
	card := &cardstore.Card{
		UserID:     execCtx.UserID,
		ActionType: cardstore.ActionTypeApproval,
		ActionData: map[string]interface{}{
			"skillName":   skill.Name,
			"description": skill.Description,
			"input":       execCtx.Input,
		},
	}
	if err := s.cards.Create(ctx, card); err != nil {
		return nil, err
	}
	entry := &approval.PendingApproval{
		CardID:    card.CardID,
		SkillName: skill.Name,
		Context:   execCtx.Clone(),
		CreatedAt: clock.Now(),
	}
	if err := s.pending.Save(ctx, entry); err != nil {
		return nil, err
	}
	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicPendingCreated, Data: entry})
	return execution.NewDeferredResult(skill.Name, card.CardID), nil
}

func (s *service) ListPending(ctx context.Context) ([]*approval.PendingApproval, error) {
	return s.pending.List(ctx)
}

func (s *service) Lookup(ctx context.Context, cardID string) (*approval.PendingApproval, error) {
	return s.pending.Load(ctx, cardID)
}

func (s *service) Take(ctx context.Context, cardID string) (*approval.PendingApproval, error) {
	entry, err := s.pending.Take(ctx, cardID)
	if err != nil || entry == nil {
		return entry, err
	}
	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicPendingTaken, Data: entry})
	return entry, nil
}

// Remove is idempotent - discarding an absent entry is not an error.
func (s *service) Remove(ctx context.Context, cardID string) error {
	entry, err := s.pending.Take(ctx, cardID)
	if err != nil || entry == nil {
		return err
	}
	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicPendingRemoved, Data: entry})
	return nil
}

func (s *service) Queue() messaging.Queue[approval.Event] { return s.events }

var _ approval.Service = (*service)(nil)
