package listener

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/viant/skillet/service/actionlog"
	"github.com/viant/skillet/service/cardstore"
)

// DefaultReviewInterval is the review poll cadence.
const DefaultReviewInterval = 60 * time.Second

// ReviewListener polls review cards and records their outcomes. Review cards
// carry no parked work, so the listener keeps a processed-id set instead of
// consuming entries; a failed record is logged and the card is still marked
// processed so one bad card cannot wedge the loop.
type ReviewListener struct {
	interval time.Duration
	cards    cardstore.Service
	log      actionlog.Service

	mux       sync.Mutex
	processed map[string]bool
	cancel    context.CancelFunc
	stopped   chan struct{}
}

// ReviewOption customizes the review listener.
type ReviewOption func(*ReviewListener)

// WithReviewInterval overrides the poll cadence.
func WithReviewInterval(interval time.Duration) ReviewOption {
	return func(l *ReviewListener) {
		if interval > 0 {
			l.interval = interval
		}
	}
}

// NewReviewListener creates a review listener.
func NewReviewListener(cards cardstore.Service, auditLog actionlog.Service, options ...ReviewOption) *ReviewListener {
	ret := &ReviewListener{
		interval:  DefaultReviewInterval,
		cards:     cards,
		log:       auditLog,
		processed: map[string]bool{},
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Start launches the poll loop; calling Start on a running listener is a
// no-op.
func (l *ReviewListener) Start(ctx context.Context) {
	l.mux.Lock()
	defer l.mux.Unlock()
	if l.cancel != nil {
		return
	}
	ctx, l.cancel = context.WithCancel(ctx)
	l.stopped = make(chan struct{})
	go l.run(ctx)
}

// Stop terminates the poll loop and waits for the in-flight tick to finish.
func (l *ReviewListener) Stop() {
	l.mux.Lock()
	cancel, stopped := l.cancel, l.stopped
	l.cancel = nil
	l.mux.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}

func (l *ReviewListener) run(ctx context.Context) {
	defer close(l.stopped)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.poll(ctx)
		}
	}
}

// poll contains a single tick: errors and panics are logged and the ticker
// keeps running.
func (l *ReviewListener) poll(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[review-listener] poll panicked: %v", r)
		}
	}()
	if err := l.tick(ctx); err != nil {
		log.Printf("[review-listener] poll failed: %v", err)
	}
}

// tick records every newly resolved review card once.
func (l *ReviewListener) tick(ctx context.Context) error {
	cards, err := l.cards.List(ctx, cardstore.ActionTypeReview, "")
	if err != nil {
		return err
	}
	for _, card := range cards {
		if card.ActionStatus == cardstore.StatusPending || card.ActionStatus == cardstore.StatusSnoozed {
			continue
		}
		if l.markProcessed(card.CardID) {
			continue
		}
		entry := &actionlog.Entry{
			Kind:   actionlog.KindReview,
			CardID: card.CardID,
			UserID: card.UserID,
			Detail: map[string]interface{}{"status": string(card.ActionStatus)},
		}
		if skillName, ok := card.ActionData["skillName"].(string); ok {
			entry.SkillName = skillName
		}
		if l.log != nil {
			if err := l.log.Append(ctx, entry); err != nil {
				log.Printf("[review-listener] failed to record card %v: %v", card.CardID, err)
			}
		}
	}
	return nil
}

// markProcessed returns true when the card was already handled.
func (l *ReviewListener) markProcessed(cardID string) bool {
	l.mux.Lock()
	defer l.mux.Unlock()
	if l.processed[cardID] {
		return true
	}
	l.processed[cardID] = true
	return false
}
