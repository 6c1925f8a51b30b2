package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/skillet/model"
	"github.com/viant/skillet/model/execution"
	"github.com/viant/skillet/service/approval"
	"github.com/viant/skillet/service/cardstore"
)

func newSkill(name string) *model.SkillDefinition {
	skill := model.NewSkill(name).WithTier(model.TierConfirm)
	skill.WithTrigger(model.TriggerKeyword, "test trigger")
	skill.NewStep("run").WithAction("nop", "nop", nil)
	return skill
}

func TestService_Defer(t *testing.T) {
	cards := cardstore.New()
	gate := New(cards)
	ctx := context.Background()

	execCtx := execution.NewContext("u1", "please archive this").WithInput("url", "https://example.com")
	result, err := gate.Defer(ctx, newSkill("url-extract"), execCtx)
	assert.Nil(t, err)
	if !assert.NotNil(t, result) {
		return
	}
	assert.True(t, result.Deferred)
	assert.NotEmpty(t, result.CardID)
	assert.Equal(t, 0, len(result.StepResults))

	// the card is visible and pending
	card, err := cards.Load(ctx, result.CardID)
	assert.Nil(t, err)
	if assert.NotNil(t, card) {
		assert.Equal(t, cardstore.ActionTypeApproval, card.ActionType)
		assert.Equal(t, cardstore.StatusPending, card.ActionStatus)
		assert.Equal(t, "url-extract", card.ActionData["skillName"])
	}

	// the pending entry snapshots the context
	pending, err := gate.Lookup(ctx, result.CardID)
	assert.Nil(t, err)
	if assert.NotNil(t, pending) {
		assert.Equal(t, "url-extract", pending.SkillName)
		assert.Equal(t, "https://example.com", pending.Context.Input["url"])
	}

	// a created event was published
	msg, err := gate.Queue().Consume(ctx)
	assert.Nil(t, err)
	assert.Equal(t, approval.TopicPendingCreated, msg.T().Topic)
	assert.Nil(t, msg.Ack())
}

// Exactly one of N concurrent resume attempts may consume the entry.
func TestService_TakeOnce(t *testing.T) {
	gate := New(cardstore.New())
	ctx := context.Background()

	result, err := gate.Defer(ctx, newSkill("url-extract"), execution.NewContext("u1", ""))
	assert.Nil(t, err)

	var won int32
	var mux sync.Mutex
	waitGroup := sync.WaitGroup{}
	for i := 0; i < 16; i++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			entry, _ := gate.Take(ctx, result.CardID)
			if entry != nil {
				mux.Lock()
				won++
				mux.Unlock()
			}
		}()
	}
	waitGroup.Wait()
	assert.Equal(t, int32(1), won)

	// consumed entries are gone
	pending, _ := gate.Lookup(ctx, result.CardID)
	assert.Nil(t, pending)
}

func TestService_RemoveIsIdempotent(t *testing.T) {
	gate := New(cardstore.New())
	ctx := context.Background()

	result, err := gate.Defer(ctx, newSkill("url-extract"), execution.NewContext("u1", ""))
	assert.Nil(t, err)

	assert.Nil(t, gate.Remove(ctx, result.CardID))
	assert.Nil(t, gate.Remove(ctx, result.CardID))
	assert.Nil(t, gate.Remove(ctx, "never-existed"))

	entry, _ := gate.Take(ctx, result.CardID)
	assert.Nil(t, entry)
}

func TestService_ListPending(t *testing.T) {
	gate := New(cardstore.New())
	ctx := context.Background()

	_, err := gate.Defer(ctx, newSkill("one"), execution.NewContext("u1", ""))
	assert.Nil(t, err)
	second, err := gate.Defer(ctx, newSkill("two"), execution.NewContext("u1", ""))
	assert.Nil(t, err)

	pending, err := gate.ListPending(ctx)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(pending))

	_, err = gate.Take(ctx, second.CardID)
	assert.Nil(t, err)
	pending, _ = gate.ListPending(ctx)
	assert.Equal(t, 1, len(pending))
}

// The lifecycle queue has no guaranteed consumer; deferring far past its
// buffer must never block the gate.
func TestService_DeferNeverBlocksWithoutConsumer(t *testing.T) {
	gate := New(cardstore.New())
	ctx := context.Background()

	for i := 0; i < 150; i++ {
		result, err := gate.Defer(ctx, newSkill(fmt.Sprintf("skill-%d", i)), execution.NewContext("u1", ""))
		assert.Nil(t, err)
		assert.NotEmpty(t, result.CardID)
	}
	pending, err := gate.ListPending(ctx)
	assert.Nil(t, err)
	assert.Equal(t, 150, len(pending))
}

func TestService_DeferSnapshotsContext(t *testing.T) {
	gate := New(cardstore.New())
	ctx := context.Background()

	execCtx := execution.NewContext("u1", "").WithInput("url", "https://example.com")
	result, err := gate.Defer(ctx, newSkill("url-extract"), execCtx)
	assert.Nil(t, err)

	// later mutation of the live context must not leak into the snapshot
	execCtx.Input["url"] = "https://changed.example.com"
	time.Sleep(time.Millisecond)

	pending, _ := gate.Lookup(ctx, result.CardID)
	if assert.NotNil(t, pending) {
		assert.Equal(t, "https://example.com", pending.Context.Input["url"])
	}
}
