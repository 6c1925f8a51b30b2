package executor

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/skillet/extension"
	"github.com/viant/skillet/model"
	"github.com/viant/skillet/model/execution"
	"github.com/viant/skillet/model/types"
)

type echoInput struct {
	Message string `json:"message"`
}

type echoOutput struct {
	Message string `json:"message"`
}

// testTool records every call so tests can assert order and always-run
// semantics.
type testTool struct {
	mux   sync.Mutex
	calls []string
}

func (t *testTool) Name() string { return "test" }

func (t *testTool) Methods() types.Signatures {
	return types.Signatures{
		{Name: "echo", Input: reflect.TypeOf(&echoInput{}), Output: reflect.TypeOf(&echoOutput{})},
		{Name: "fail"},
		{Name: "panic"},
	}
}

func (t *testTool) Method(name string) (types.Executable, error) {
	switch name {
	case "echo":
		return func(ctx context.Context, in, out interface{}) error {
			t.record("echo")
			out.(*echoOutput).Message = in.(*echoInput).Message
			return nil
		}, nil
	case "fail":
		return func(ctx context.Context, in, out interface{}) error {
			t.record("fail")
			return errors.New("boom")
		}, nil
	case "panic":
		return func(ctx context.Context, in, out interface{}) error {
			t.record("panic")
			panic("kaboom")
		}, nil
	}
	return nil, types.NewMethodNotFoundError(name)
}

func (t *testTool) record(name string) {
	t.mux.Lock()
	defer t.mux.Unlock()
	t.calls = append(t.calls, name)
}

func (t *testTool) recorded() []string {
	t.mux.Lock()
	defer t.mux.Unlock()
	return append([]string{}, t.calls...)
}

func newTestExecutor() (*Service, *testTool) {
	tool := &testTool{}
	actions := extension.NewActions()
	actions.Register(tool)
	return New(actions), tool
}

func TestService_Execute_RunsStepsInOrder(t *testing.T) {
	executor, tool := newTestExecutor()
	skill := model.NewSkill("ordered")
	skill.NewStep("first").WithAction("test", "echo", map[string]interface{}{"message": "a"})
	skill.NewStep("second").WithAction("test", "echo", map[string]interface{}{"message": "b"})

	result := executor.Execute(context.Background(), skill, execution.NewContext("u1", ""))
	assert.True(t, result.Success)
	assert.Equal(t, []string{"echo", "echo"}, tool.recorded())
	assert.Equal(t, 2, len(result.StepResults))
	assert.True(t, result.StepResults["first"].Success)
	assert.True(t, result.StepResults["second"].Success)
}

// A failing step halts the remaining regular steps, but the always-run set
// still executes exactly once and the overall run reports failure.
func TestService_Execute_AlwaysRunAfterFailure(t *testing.T) {
	executor, tool := newTestExecutor()
	skill := model.NewSkill("cleanup-after-failure")
	skill.NewStep("work").WithAction("test", "fail", nil)
	skill.NewStep("more-work").WithAction("test", "echo", map[string]interface{}{"message": "never"})
	skill.NewStep("cleanup").WithAction("test", "echo", map[string]interface{}{"message": "bye"}).WithAlwaysRun(true)

	result := executor.Execute(context.Background(), skill, execution.NewContext("u1", ""))
	assert.False(t, result.Success)
	assert.Equal(t, []string{"fail", "echo"}, tool.recorded())
	assert.False(t, result.StepResults["work"].Success)
	assert.Equal(t, "boom", result.StepResults["work"].Error)
	assert.True(t, result.StepResults["more-work"].Skipped)
	assert.True(t, result.StepResults["cleanup"].Success)
}

// A failed run names the first failing step so audit entries carry the cause.
func TestService_Execute_FailureNamesStep(t *testing.T) {
	executor, _ := newTestExecutor()
	skill := model.NewSkill("who-failed")
	skill.NewStep("work").WithAction("test", "fail", nil)
	skill.NewStep("cleanup").WithAction("test", "echo", map[string]interface{}{"message": "bye"}).WithAlwaysRun(true)

	result := executor.Execute(context.Background(), skill, execution.NewContext("u1", ""))
	assert.False(t, result.Success)
	assert.Equal(t, "step work failed: boom", result.Error)
}

// When every step succeeds the always-run step contributes to success like
// any other step.
func TestService_Execute_AlwaysRunOnSuccess(t *testing.T) {
	executor, tool := newTestExecutor()
	skill := model.NewSkill("cleanup-on-success")
	skill.NewStep("work").WithAction("test", "echo", map[string]interface{}{"message": "hi"})
	skill.NewStep("cleanup").WithAction("test", "echo", map[string]interface{}{"message": "bye"}).WithAlwaysRun(true)

	result := executor.Execute(context.Background(), skill, execution.NewContext("u1", ""))
	assert.True(t, result.Success)
	assert.Equal(t, []string{"echo", "echo"}, tool.recorded())
}

func TestService_Execute_CleanupKindAlwaysRuns(t *testing.T) {
	executor, tool := newTestExecutor()
	skill := model.NewSkill("cleanup-kind")
	skill.NewStep("work").WithAction("test", "fail", nil)
	step := skill.NewStep("release").WithAction("test", "echo", map[string]interface{}{"message": "released"})
	step.Kind = model.StepKindCleanup

	result := executor.Execute(context.Background(), skill, execution.NewContext("u1", ""))
	assert.False(t, result.Success)
	assert.Equal(t, []string{"fail", "echo"}, tool.recorded())
}

func TestService_Execute_ConditionalSkip(t *testing.T) {
	executor, tool := newTestExecutor()
	skill := model.NewSkill("conditional")
	skill.NewStep("maybe").
		WithAction("test", "echo", map[string]interface{}{"message": "conditional"}).
		WithWhen("${input.enabled}")
	skill.NewStep("always").WithAction("test", "echo", map[string]interface{}{"message": "done"})

	execCtx := execution.NewContext("u1", "").WithInput("enabled", false)
	result := executor.Execute(context.Background(), skill, execCtx)
	assert.True(t, result.Success)
	assert.True(t, result.StepResults["maybe"].Skipped)
	assert.Equal(t, []string{"echo"}, tool.recorded())

	execCtx = execution.NewContext("u1", "").WithInput("enabled", true)
	result = executor.Execute(context.Background(), skill, execCtx)
	assert.True(t, result.Success)
	assert.False(t, result.StepResults["maybe"].Skipped)
}

// A later step can reference an earlier step's output.
func TestService_Execute_DataFlow(t *testing.T) {
	executor, _ := newTestExecutor()
	skill := model.NewSkill("data-flow")
	skill.NewStep("produce").WithAction("test", "echo", map[string]interface{}{"message": "hello"})
	skill.NewStep("consume").WithAction("test", "echo", map[string]interface{}{"message": "${steps.produce.output.message} world"})

	result := executor.Execute(context.Background(), skill, execution.NewContext("u1", ""))
	assert.True(t, result.Success)
	output, ok := result.StepResults["consume"].Output.(*echoOutput)
	if assert.True(t, ok) {
		assert.Equal(t, "hello world", output.Message)
	}
}

func TestService_Execute_PanicContained(t *testing.T) {
	executor, _ := newTestExecutor()
	skill := model.NewSkill("panicky")
	skill.NewStep("blow-up").WithAction("test", "panic", nil)
	skill.NewStep("cleanup").WithAction("test", "echo", map[string]interface{}{"message": "bye"}).WithAlwaysRun(true)

	result := executor.Execute(context.Background(), skill, execution.NewContext("u1", ""))
	assert.False(t, result.Success)
	assert.Contains(t, result.StepResults["blow-up"].Error, "panicked")
	assert.True(t, result.StepResults["cleanup"].Success)
}

func TestService_Execute_UnknownService(t *testing.T) {
	executor, _ := newTestExecutor()
	skill := model.NewSkill("missing-tool")
	skill.NewStep("run").WithAction("absent", "do", nil)

	result := executor.Execute(context.Background(), skill, execution.NewContext("u1", ""))
	assert.False(t, result.Success)
	assert.Contains(t, result.StepResults["run"].Error, "unknown tool service")
}

func TestService_Execute_AppliesInputDefaults(t *testing.T) {
	executor, _ := newTestExecutor()
	skill := model.NewSkill("defaulted")
	skill.InputSchema = map[string]*model.SchemaField{
		"greeting": {Type: "string", Default: "hello"},
	}
	skill.NewStep("run").WithAction("test", "echo", map[string]interface{}{"message": "${input.greeting}"})

	result := executor.Execute(context.Background(), skill, execution.NewContext("u1", ""))
	assert.True(t, result.Success)
	output, ok := result.StepResults["run"].Output.(*echoOutput)
	if assert.True(t, ok) {
		assert.Equal(t, "hello", output.Message)
	}
}

func TestEvalCondition(t *testing.T) {
	variables := map[string]interface{}{
		"input": map[string]interface{}{
			"enabled": true,
			"count":   0,
			"mode":    "fast",
		},
		"steps": map[string]interface{}{
			"fetch": map[string]interface{}{"success": true},
		},
	}

	testCases := []struct {
		expr     string
		expected bool
	}{
		{expr: "${input.enabled}", expected: true},
		{expr: "!${input.enabled}", expected: false},
		{expr: "${input.count}", expected: false},
		{expr: "${input.mode} == fast", expected: true},
		{expr: "${input.mode} != fast", expected: false},
		{expr: "${steps.fetch.success}", expected: true},
		{expr: "${input.missing}", expected: false},
		{expr: "!${input.missing}", expected: true},
		{expr: "", expected: true},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, EvalCondition(tc.expr, variables), tc.expr)
	}
}

func TestExpand(t *testing.T) {
	variables := map[string]interface{}{
		"input": map[string]interface{}{"url": "https://example.com", "limit": 3},
	}

	// a lone reference keeps the referenced type
	assert.Equal(t, 3, Expand("${input.limit}", variables))
	// interpolation renders into text
	assert.Equal(t, "fetch https://example.com now", Expand("fetch ${input.url} now", variables))
	// maps and slices expand recursively
	expanded := Expand(map[string]interface{}{
		"target": "${input.url}",
		"tags":   []interface{}{"${input.limit}"},
	}, variables)
	assert.Equal(t, map[string]interface{}{
		"target": "https://example.com",
		"tags":   []interface{}{3},
	}, expanded)
	// an unknown lone reference resolves to nil
	assert.Nil(t, Expand("${input.missing}", variables))
	// unknown references interpolate as empty text
	assert.Equal(t, "got ", Expand("got ${input.missing}", variables))
}
