package execution

// Context carries the per-invocation state a skill run operates on: the user
// and message that triggered it, the routing pillar, the approval latch and a
// free-form input bag merged with trigger-derived fields.
type Context struct {
	UserID      string `json:"userId,omitempty"`
	MessageText string `json:"messageText,omitempty"`

	// Pillar is the top-level category the content was routed under.
	Pillar string `json:"pillar,omitempty"`

	// ApprovalLatch, when raised, defers Tier-2 skills behind an approval
	// card instead of executing them immediately.
	ApprovalLatch bool `json:"approvalLatch,omitempty"`

	Input map[string]interface{} `json:"input,omitempty"`
}

// NewContext creates an execution context for the given user and message.
func NewContext(userID, messageText string) *Context {
	return &Context{
		UserID:      userID,
		MessageText: messageText,
		Input:       map[string]interface{}{},
	}
}

// WithPillar sets the routing pillar.
func (c *Context) WithPillar(pillar string) *Context {
	c.Pillar = pillar
	return c
}

// WithApprovalLatch raises or lowers the approval latch.
func (c *Context) WithApprovalLatch(flag bool) *Context {
	c.ApprovalLatch = flag
	return c
}

// WithInput sets a single input value.
func (c *Context) WithInput(name string, value interface{}) *Context {
	if c.Input == nil {
		c.Input = map[string]interface{}{}
	}
	c.Input[name] = value
	return c
}

// MergeInput copies the supplied values into the input bag without
// overwriting fields the caller already set.
func (c *Context) MergeInput(values map[string]interface{}) {
	if len(values) == 0 {
		return
	}
	if c.Input == nil {
		c.Input = make(map[string]interface{}, len(values))
	}
	for k, v := range values {
		if _, ok := c.Input[k]; !ok {
			c.Input[k] = v
		}
	}
}

// Clone creates a deep copy of the context; the input bag is copied one
// level deep.
func (c *Context) Clone() *Context {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Input != nil {
		clone.Input = make(map[string]interface{}, len(c.Input))
		for k, v := range c.Input {
			clone.Input[k] = v
		}
	}
	return &clone
}
