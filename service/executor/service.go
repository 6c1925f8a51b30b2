// Package executor runs a skill's step pipeline in declaration order. The
// engine performs no business logic itself: every step delegates to a
// registered tool service, and the executor only sequences calls, evaluates
// predicates and records per-step outcomes.
package executor

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/viant/skillet/extension"
	"github.com/viant/skillet/internal/clock"
	"github.com/viant/skillet/model"
	"github.com/viant/skillet/model/execution"
	"github.com/viant/skillet/model/types"
	"github.com/viant/skillet/tracing"
	"github.com/viant/structology/conv"
)

// Service executes skill pipelines against a tool service registry.
type Service struct {
	actions   *extension.Actions
	converter *conv.Converter
}

// New creates a pipeline executor backed by the supplied registry.
func New(actions *extension.Actions) *Service {
	return &Service{
		actions:   actions,
		converter: conv.NewConverter(conv.DefaultOptions()),
	}
}

// Execute runs every step of the skill in order. A failing step halts the
// remaining regular steps but never the always-run set; a conditional step
// whose predicate is false is recorded as skipped. Overall success is the
// AND over all non-skipped step outcomes. Execute never panics - a step
// panic is contained and recorded as that step's failure.
func (s *Service) Execute(ctx context.Context, skill *model.SkillDefinition, execCtx *execution.Context) *execution.Result {
	started := clock.Now()
	if execCtx == nil {
		execCtx = execution.NewContext("", "")
	}
	ctx, span := tracing.StartSpan(ctx, "skill.execute", "INTERNAL")
	span.WithAttributes(map[string]string{"skill.name": skill.Name})

	result := &execution.Result{
		SkillName:   skill.Name,
		Success:     true,
		StepResults: map[string]*execution.StepResult{},
	}

	input := cloneInput(execCtx.Input)
	if err := skill.ApplyDefaults(input); err != nil {
		result.Success = false
		result.Error = err.Error()
		result.ExecutionTimeMs = elapsedMs(started)
		tracing.EndSpan(span, err)
		return result
	}

	halted := false
	for _, step := range skill.Steps {
		variables := s.variables(input, execCtx, result)
		stepResult := s.runStep(ctx, step, variables, halted)
		result.StepResults[step.ID] = stepResult
		if stepResult.Skipped {
			continue
		}
		if !stepResult.Success {
			result.Success = false
			if result.Error == "" {
				result.Error = fmt.Sprintf("step %s failed: %s", step.ID, stepResult.Error)
			}
			halted = true
		}
	}

	result.ExecutionTimeMs = elapsedMs(started)
	var runErr error
	if !result.Success {
		runErr = fmt.Errorf("skill %s: %s", skill.Name, result.Error)
	}
	tracing.EndSpan(span, runErr)
	return result
}

// runStep executes a single step; halted suppresses everything outside the
// always-run set. Returned results are never nil.
func (s *Service) runStep(ctx context.Context, step *model.ProcessStep, variables map[string]interface{}, halted bool) (stepResult *execution.StepResult) {
	stepResult = &execution.StepResult{}
	if halted && !step.Always() {
		stepResult.Skipped = true
		return stepResult
	}

	switch step.Kind {
	case model.StepKindConditional:
		if !EvalCondition(step.When, variables) {
			stepResult.Skipped = true
			return stepResult
		}
	case model.StepKindAction, model.StepKindCleanup:
	default:
		stepResult.Error = fmt.Sprintf("step %s has unknown kind %q", step.ID, step.Kind)
		return stepResult
	}

	started := clock.Now()
	defer func() {
		stepResult.ExecutionTimeMs = elapsedMs(started)
		if r := recover(); r != nil {
			stepResult.Success = false
			stepResult.Error = fmt.Sprintf("step %s panicked: %v", step.ID, r)
		}
	}()

	output, err := s.invoke(ctx, step.Action, variables)
	if err != nil {
		stepResult.Error = err.Error()
		return stepResult
	}
	stepResult.Success = true
	stepResult.Output = output
	return stepResult
}

// invoke expands the action input, converts it to the method's typed input
// and delegates to the registered tool service.
func (s *Service) invoke(ctx context.Context, action *model.Action, variables map[string]interface{}) (interface{}, error) {
	service := s.actions.Lookup(action.Service)
	if service == nil {
		return nil, fmt.Errorf("unknown tool service: %s", action.Service)
	}
	method, err := service.Method(action.Method)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup %s.%s: %w", action.Service, action.Method, err)
	}

	expanded := Expand(action.Input, variables)
	input, output, err := s.buildIO(service, action.Method, expanded)
	if err != nil {
		return nil, err
	}
	if err = method(ctx, input, output); err != nil {
		return nil, err
	}
	return output, nil
}

// buildIO materializes the typed input/output values declared by the method
// signature; a method without a signature receives the raw expanded input
// and writes into a map.
func (s *Service) buildIO(service types.Service, methodName string, expanded interface{}) (interface{}, interface{}, error) {
	signature := service.Methods().Lookup(methodName)
	if signature == nil || signature.Input == nil {
		output := map[string]interface{}{}
		return expanded, &output, nil
	}
	input := newInstance(signature.Input)
	if expanded != nil {
		if err := s.converter.Convert(expanded, input); err != nil {
			return nil, nil, fmt.Errorf("failed to convert input for %s.%s: %w", service.Name(), methodName, err)
		}
	}
	var output interface{}
	if signature.Output != nil {
		output = newInstance(signature.Output)
	} else {
		aMap := map[string]interface{}{}
		output = &aMap
	}
	return input, output, nil
}

func newInstance(rType reflect.Type) interface{} {
	if rType.Kind() == reflect.Ptr {
		return reflect.New(rType.Elem()).Interface()
	}
	return reflect.New(rType).Interface()
}

func (s *Service) variables(input map[string]interface{}, execCtx *execution.Context, result *execution.Result) map[string]interface{} {
	return map[string]interface{}{
		"input": input,
		"context": map[string]interface{}{
			"userId":      execCtx.UserID,
			"messageText": execCtx.MessageText,
			"pillar":      execCtx.Pillar,
		},
		"steps": result.StepOutputs(),
	}
}

func cloneInput(input map[string]interface{}) map[string]interface{} {
	clone := make(map[string]interface{}, len(input))
	for k, v := range input {
		clone[k] = v
	}
	return clone
}

func elapsedMs(started time.Time) int {
	return int(clock.Now().Sub(started) / time.Millisecond)
}
