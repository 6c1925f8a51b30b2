// Package listener hosts the poll-driven loops that resolve action cards:
// the approval listener resumes or discards deferred skill runs, the review
// listener records review outcomes.
package listener

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/viant/skillet/service/actionlog"
	"github.com/viant/skillet/service/approval"
	"github.com/viant/skillet/service/cardstore"
	"github.com/viant/skillet/service/executor"
	"github.com/viant/skillet/service/matcher"
	"github.com/viant/skillet/tracing"
)

// DefaultApprovalInterval is the approval poll cadence.
const DefaultApprovalInterval = 15 * time.Second

// ApprovalListener polls approval cards and dispatches the parked work:
// an actioned card resumes its deferred run exactly once, a dismissed card
// discards it. Poll errors are logged and never stop the loop.
type ApprovalListener struct {
	interval time.Duration
	gate     approval.Service
	cards    cardstore.Service
	registry *matcher.Service
	executor *executor.Service
	log      actionlog.Service

	mux     sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

// ApprovalOption customizes the approval listener.
type ApprovalOption func(*ApprovalListener)

// WithApprovalInterval overrides the poll cadence.
func WithApprovalInterval(interval time.Duration) ApprovalOption {
	return func(l *ApprovalListener) {
		if interval > 0 {
			l.interval = interval
		}
	}
}

// NewApprovalListener creates an approval listener.
func NewApprovalListener(gate approval.Service, cards cardstore.Service, registry *matcher.Service, exec *executor.Service, auditLog actionlog.Service, options ...ApprovalOption) *ApprovalListener {
	ret := &ApprovalListener{
		interval: DefaultApprovalInterval,
		gate:     gate,
		cards:    cards,
		registry: registry,
		executor: exec,
		log:      auditLog,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Start launches the poll loop; calling Start on a running listener is a
// no-op.
func (l *ApprovalListener) Start(ctx context.Context) {
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
func (l *ApprovalListener) Stop() {
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

func (l *ApprovalListener) run(ctx context.Context) {
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
func (l *ApprovalListener) poll(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[approval-listener] poll panicked: %v", r)
		}
	}()
	if err := l.tick(ctx); err != nil {
		log.Printf("[approval-listener] poll failed: %v", err)
	}
}

// tick processes every resolved approval card once.
func (l *ApprovalListener) tick(ctx context.Context) error {
	actioned, err := l.cards.List(ctx, cardstore.ActionTypeApproval, cardstore.StatusActioned)
	if err != nil {
		return err
	}
	dismissed, err := l.cards.List(ctx, cardstore.ActionTypeApproval, cardstore.StatusDismissed)
	if err != nil {
		return err
	}
	for _, card := range actioned {
		l.resume(ctx, card)
	}
	for _, card := range dismissed {
		l.discard(ctx, card)
	}
	return nil
}

// resume consumes the parked entry and executes the deferred run. The Take
// is the at-most-once guard: a nil entry means another poller already
// dispatched this card, or the card never had parked work - both are
// silently ignored.
func (l *ApprovalListener) resume(ctx context.Context, card *cardstore.Card) {
	pending, err := l.gate.Take(ctx, card.CardID)
	if err != nil {
		log.Printf("[approval-listener] failed to take pending for card %v: %v", card.CardID, err)
		return
	}
	if pending == nil {
		return
	}
	ctx, span := tracing.StartSpan(ctx, "approval.resume", "CONSUMER")
	span.WithAttributes(map[string]string{"skill.name": pending.SkillName, "card.id": card.CardID})
	defer span.OnDone()
	l.append(ctx, &actionlog.Entry{
		Kind:      actionlog.KindApproved,
		SkillName: pending.SkillName,
		CardID:    card.CardID,
		UserID:    card.UserID,
	})

	skill := l.registry.Lookup(pending.SkillName)
	if skill == nil {
		log.Printf("[approval-listener] skill %v is no longer registered, dropping card %v", pending.SkillName, card.CardID)
		l.append(ctx, &actionlog.Entry{
			Kind:      actionlog.KindFailed,
			SkillName: pending.SkillName,
			CardID:    card.CardID,
			Error:     "skill no longer registered",
		})
		return
	}

	execCtx := pending.Context
	if execCtx != nil {
		// the run was already approved, do not defer it again
		execCtx = execCtx.Clone().WithApprovalLatch(false)
	}
	result := l.executor.Execute(ctx, skill, execCtx)
	if result.Success {
		l.append(ctx, &actionlog.Entry{
			Kind:      actionlog.KindExecuted,
			SkillName: pending.SkillName,
			CardID:    card.CardID,
			UserID:    card.UserID,
		})
		return
	}
	// a failed resume is terminal - the pending entry is already consumed
	// and the run is not retried
	l.append(ctx, &actionlog.Entry{
		Kind:      actionlog.KindFailed,
		SkillName: pending.SkillName,
		CardID:    card.CardID,
		UserID:    card.UserID,
		Error:     result.Error,
	})
	if err := l.cards.UpdateStatus(ctx, card.CardID, cardstore.StatusExpired); err != nil {
		log.Printf("[approval-listener] failed to expire card %v: %v", card.CardID, err)
	}
}

// discard drops the parked entry of a dismissed card without executing it.
func (l *ApprovalListener) discard(ctx context.Context, card *cardstore.Card) {
	pending, err := l.gate.Lookup(ctx, card.CardID)
	if err != nil || pending == nil {
		return
	}
	if err := l.gate.Remove(ctx, card.CardID); err != nil {
		log.Printf("[approval-listener] failed to remove pending for card %v: %v", card.CardID, err)
		return
	}
	l.append(ctx, &actionlog.Entry{
		Kind:      actionlog.KindRejected,
		SkillName: pending.SkillName,
		CardID:    card.CardID,
		UserID:    card.UserID,
	})
}

func (l *ApprovalListener) append(ctx context.Context, entry *actionlog.Entry) {
	if l.log == nil {
		return
	}
	if err := l.log.Append(ctx, entry); err != nil {
		log.Printf("[approval-listener] failed to append %v entry: %v", entry.Kind, err)
	}
}
