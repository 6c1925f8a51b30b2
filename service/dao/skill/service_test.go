package skill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/skillet/model"
)

var urlExtractYAML = []byte(`
name: url-extract
version: 1.0.0
tier: 2
pillar: research
triggers:
  - domain: example.com
  - urlPattern: /articles/*
inputSchema:
  url:
    type: string
    required: true
process:
  fetch:
    action: browser:open
    input:
      url: ${input.url}
  summarize:
    when: ${steps.fetch.success}
    action:
      service: llm
      method: analyze
      input:
        text: ${steps.fetch.output.content}
  close:
    kind: cleanup
    action: browser:close
`)

func TestService_DecodeYAML(t *testing.T) {
	service := New()
	definition, err := service.DecodeYAML(urlExtractYAML)
	assert.Nil(t, err)
	assert.Equal(t, "url-extract", definition.Name)
	assert.Equal(t, model.TierConfirm, definition.Tier)
	assert.Equal(t, "research", definition.Pillar)
	assert.Equal(t, 2, len(definition.Triggers))
	assert.Equal(t, model.TriggerDomain, definition.Triggers[0].Type)
	assert.Equal(t, "example.com", definition.Triggers[0].Value)

	assert.True(t, definition.InputSchema["url"].Required)

	assert.Equal(t, 3, len(definition.Steps))
	fetch := definition.Steps[0]
	assert.Equal(t, "fetch", fetch.ID)
	assert.Equal(t, model.StepKindAction, fetch.Kind)
	assert.Equal(t, "browser", fetch.Action.Service)
	assert.Equal(t, "open", fetch.Action.Method)
	input, ok := fetch.Action.Input.(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "${input.url}", input["url"])

	summarize := definition.Steps[1]
	assert.Equal(t, model.StepKindConditional, summarize.Kind)
	assert.Equal(t, "${steps.fetch.success}", summarize.When)
	assert.Equal(t, "llm", summarize.Action.Service)

	closeStep := definition.Steps[2]
	assert.Equal(t, model.StepKindCleanup, closeStep.Kind)
	assert.True(t, closeStep.Always())
}

func TestService_DecodeYAML_Invalid(t *testing.T) {
	service := New()
	_, err := service.DecodeYAML([]byte("name: broken\nprocess:\n  a:\n    action: nop:nop\n"))
	assert.NotNil(t, err, "missing triggers must be rejected")

	_, err = service.DecodeYAML([]byte("name: bad-trigger\ntriggers:\n  - regex: .*\nprocess:\n  a:\n    action: nop:nop\n"))
	assert.NotNil(t, err)
}

func TestService_UpsertAndRefresh(t *testing.T) {
	service := New()
	definition, err := service.DecodeYAML(urlExtractYAML)
	assert.Nil(t, err)

	service.Upsert("mem://localhost/url-extract.yaml", definition)
	service.Refresh("mem://localhost/url-extract.yaml")
	// refresh only drops the cache; decoding is unaffected
	again, err := service.DecodeYAML(urlExtractYAML)
	assert.Nil(t, err)
	assert.Equal(t, definition.Name, again.Name)
}
