package skillet

import (
	"context"
	"fmt"

	"github.com/viant/skillet/model"
	"github.com/viant/skillet/model/execution"
	"github.com/viant/skillet/policy"
	"github.com/viant/skillet/service/actionlog"
	"github.com/viant/skillet/service/approval"
	"github.com/viant/skillet/service/cardstore"
	"github.com/viant/skillet/service/dao/skill"
	"github.com/viant/skillet/service/executor"
	"github.com/viant/skillet/service/listener"
	"github.com/viant/skillet/service/matcher"
)

// Runtime represents a skill engine runtime.
type Runtime struct {
	skillDAO         *skill.Service
	registry         *matcher.Service
	executor         *executor.Service
	cards            cardstore.Service
	gate             approval.Service
	auditLog         actionlog.Service
	approvalListener *listener.ApprovalListener
	reviewListener   *listener.ReviewListener
	approvalEnabled  bool
	reviewEnabled    bool
}

// LoadSkill loads a skill definition from the given location and registers
// it with the trigger matcher.
func (r *Runtime) LoadSkill(ctx context.Context, location string) (*model.SkillDefinition, error) {
	definition, err := r.skillDAO.Load(ctx, location)
	if err != nil {
		return nil, err
	}
	r.registry.Register(definition)
	return definition, nil
}

// InitializeRegistry loads every listed definition; the first load error
// aborts initialization.
func (r *Runtime) InitializeRegistry(ctx context.Context, locations ...string) error {
	for _, location := range locations {
		if _, err := r.LoadSkill(ctx, location); err != nil {
			return err
		}
	}
	return nil
}

// DecodeYAMLSkill decodes a skill definition from raw YAML bytes.
func (r *Runtime) DecodeYAMLSkill(data []byte) (*model.SkillDefinition, error) {
	return r.skillDAO.DecodeYAML(data)
}

// RegisterSkills registers pre-built definitions with the trigger matcher.
func (r *Runtime) RegisterSkills(definitions ...*model.SkillDefinition) {
	r.registry.Register(definitions...)
}

// Skills returns all registered definitions.
func (r *Runtime) Skills() []*model.SkillDefinition {
	return r.registry.Skills()
}

// RefreshSkill discards any cached copy of the skill definition located at
// the given URL/location. The next LoadSkill call will reload the file via
// the configured meta-service (i.e. one extra disk/cloud round-trip).
func (r *Runtime) RefreshSkill(location string) error {
	if r == nil || r.skillDAO == nil {
		return fmt.Errorf("runtime not fully initialised - skillDAO missing")
	}
	r.skillDAO.Refresh(location)
	return nil
}

// UpsertDefinition parses the supplied YAML bytes and stores the resulting
// skill definition in the in-memory cache under the specified location.
// When data is nil the call falls back to RefreshSkill, causing a lazy
// reload on next use.
func (r *Runtime) UpsertDefinition(location string, data []byte) error {
	if r == nil || r.skillDAO == nil {
		return fmt.Errorf("runtime not fully initialised - skillDAO missing")
	}
	if data == nil {
		return r.RefreshSkill(location)
	}
	definition, err := r.skillDAO.DecodeYAML(data)
	if err != nil {
		return fmt.Errorf("failed to decode skill YAML: %w", err)
	}
	if definition.Source == nil {
		definition.Source = &model.Source{URL: location}
	} else {
		definition.Source.URL = location
	}
	r.skillDAO.Upsert(location, definition)
	return nil
}

// FindBestMatch scores the captured content against every registered trigger
// and returns the single best candidate at or above the threshold, or nil.
func (r *Runtime) FindBestMatch(content string, execCtx *execution.Context) *matcher.Match {
	return r.registry.FindBestMatch(content, execCtx)
}

// ExecuteSkill runs the skill's pipeline immediately. A policy embedded in
// the context can reject the run before any step executes.
func (r *Runtime) ExecuteSkill(ctx context.Context, definition *model.SkillDefinition, execCtx *execution.Context) *execution.Result {
	if execCtx == nil {
		execCtx = execution.NewContext("", "")
	}
	if p := policy.FromContext(ctx); !p.Approves(ctx, definition.Name, execCtx.Input) {
		result := &execution.Result{
			SkillName: definition.Name,
			Error:     fmt.Sprintf("skill %s blocked by policy", definition.Name),
		}
		r.append(ctx, &actionlog.Entry{
			Kind:      actionlog.KindRejected,
			SkillName: definition.Name,
			UserID:    execCtx.UserID,
			Pillar:    execCtx.Pillar,
			Error:     result.Error,
		})
		return result
	}

	result := r.executor.Execute(ctx, definition, execCtx)
	entry := &actionlog.Entry{
		Kind:      actionlog.KindExecuted,
		SkillName: definition.Name,
		UserID:    execCtx.UserID,
		Pillar:    execCtx.Pillar,
	}
	if !result.Success {
		entry.Kind = actionlog.KindFailed
		entry.Error = result.Error
	}
	r.append(ctx, entry)
	return result
}

// ExecuteSkillWithApproval runs the skill unless its tier and the raised
// approval latch require deferral; a deferred run returns a result carrying
// the approval card id and executes later via the approval listener.
func (r *Runtime) ExecuteSkillWithApproval(ctx context.Context, definition *model.SkillDefinition, execCtx *execution.Context) (*execution.Result, error) {
	if execCtx == nil {
		execCtx = execution.NewContext("", "")
	}
	if definition.Tier.RequiresApproval() && execCtx.ApprovalLatch {
		result, err := r.gate.Defer(ctx, definition, execCtx)
		if err != nil {
			return nil, err
		}
		r.append(ctx, &actionlog.Entry{
			Kind:      actionlog.KindDeferred,
			SkillName: definition.Name,
			CardID:    result.CardID,
			UserID:    execCtx.UserID,
			Pillar:    execCtx.Pillar,
		})
		return result, nil
	}
	return r.ExecuteSkill(ctx, definition, execCtx), nil
}

// ExecuteSkillByName resolves a registered skill by name and runs it through
// the approval gate.
func (r *Runtime) ExecuteSkillByName(ctx context.Context, name string, execCtx *execution.Context) (*execution.Result, error) {
	definition := r.registry.Lookup(name)
	if definition == nil {
		return nil, fmt.Errorf("unknown skill: %s", name)
	}
	return r.ExecuteSkillWithApproval(ctx, definition, execCtx)
}

// ResumeApproved consumes the pending entry parked under the card and runs
// the deferred skill with the approval latch lowered. The entry is removed
// before execution, so duplicate or concurrent resumes for the same card run
// at most once; a nil result with a nil error means the card carried no
// parked work. A failed resume is terminal - the card is best-effort expired
// and the run is never retried.
func (r *Runtime) ResumeApproved(ctx context.Context, cardID string) (*execution.Result, error) {
	pending, err := r.gate.Take(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return nil, nil
	}
	execCtx := pending.Context
	if execCtx != nil {
		execCtx = execCtx.Clone().WithApprovalLatch(false)
	}
	r.append(ctx, &actionlog.Entry{
		Kind:      actionlog.KindApproved,
		SkillName: pending.SkillName,
		CardID:    cardID,
	})
	definition := r.registry.Lookup(pending.SkillName)
	if definition == nil {
		r.append(ctx, &actionlog.Entry{
			Kind:      actionlog.KindFailed,
			SkillName: pending.SkillName,
			CardID:    cardID,
			Error:     "skill no longer registered",
		})
		return nil, fmt.Errorf("skill %s is no longer registered", pending.SkillName)
	}
	result := r.ExecuteSkill(ctx, definition, execCtx)
	if !result.Success {
		_ = r.cards.UpdateStatus(ctx, cardID, cardstore.StatusExpired)
	}
	return result, nil
}

// Handle matches the captured content against the registry and, on a match,
// runs the winning skill through the approval gate. The trigger-derived
// fields are merged into the input bag without overwriting caller values.
// A nil result with a nil error means nothing matched.
func (r *Runtime) Handle(ctx context.Context, content string, execCtx *execution.Context) (*execution.Result, *matcher.Match, error) {
	if execCtx == nil {
		execCtx = execution.NewContext("", content)
	}
	match := r.registry.FindBestMatch(content, execCtx)
	if match == nil {
		return nil, nil, nil
	}
	r.append(ctx, &actionlog.Entry{
		Kind:      actionlog.KindMatched,
		SkillName: match.Skill.Name,
		UserID:    execCtx.UserID,
		Pillar:    execCtx.Pillar,
		Detail: map[string]interface{}{
			"trigger": string(match.Trigger.Type),
			"score":   match.Score,
		},
	})
	input := map[string]interface{}{"content": content}
	if match.Trigger.Type != model.TriggerKeyword {
		input["url"] = content
	}
	execCtx.MergeInput(input)

	result, err := r.ExecuteSkillWithApproval(ctx, match.Skill, execCtx)
	return result, match, err
}

// Start launches the poll listeners enabled by configuration.
func (r *Runtime) Start(ctx context.Context) error {
	if r.approvalEnabled {
		r.approvalListener.Start(ctx)
	}
	if r.reviewEnabled {
		r.reviewListener.Start(ctx)
	}
	return nil
}

// Shutdown stops the poll listeners.
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.approvalListener.Stop()
	r.reviewListener.Stop()
	return nil
}

// StartApprovalListener launches only the approval poll loop.
func (r *Runtime) StartApprovalListener(ctx context.Context) {
	r.approvalListener.Start(ctx)
}

// StopApprovalListener stops the approval poll loop.
func (r *Runtime) StopApprovalListener() {
	r.approvalListener.Stop()
}

// StartReviewListener launches only the review poll loop.
func (r *Runtime) StartReviewListener(ctx context.Context) {
	r.reviewListener.Start(ctx)
}

// StopReviewListener stops the review poll loop.
func (r *Runtime) StopReviewListener() {
	r.reviewListener.Stop()
}

// Approval returns the approval gate.
func (r *Runtime) Approval() approval.Service {
	return r.gate
}

// Cards returns the action card store.
func (r *Runtime) Cards() cardstore.Service {
	return r.cards
}

// ActionLog returns the action log.
func (r *Runtime) ActionLog() actionlog.Service {
	return r.auditLog
}

func (r *Runtime) append(ctx context.Context, entry *actionlog.Entry) {
	if r.auditLog == nil {
		return
	}
	_ = r.auditLog.Append(ctx, entry)
}
