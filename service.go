package skillet

import (
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/skillet/extension"
	"github.com/viant/skillet/model/types"
	"github.com/viant/skillet/service/action/browser"
	"github.com/viant/skillet/service/action/nop"
	"github.com/viant/skillet/service/action/record"
	"github.com/viant/skillet/service/actionlog"
	"github.com/viant/skillet/service/approval"
	approvalmem "github.com/viant/skillet/service/approval/memory"
	"github.com/viant/skillet/service/cardstore"
	"github.com/viant/skillet/service/dao/skill"
	"github.com/viant/skillet/service/executor"
	"github.com/viant/skillet/service/listener"
	"github.com/viant/skillet/service/matcher"
	"github.com/viant/skillet/service/meta"
	"github.com/viant/x"
)

// Service wires the skill engine together: the definition DAO, the trigger
// matcher, the step executor, the approval gate and the poll listeners.
type Service struct {
	runtime           *Runtime
	config            *Config
	metaService       *meta.Service
	skillDAO          *skill.Service
	registry          *matcher.Service
	actions           *extension.Actions
	executor          *executor.Service
	cards             cardstore.Service
	gate              approval.Service
	auditLog          actionlog.Service
	extensionTypes    []*x.Type
	extensionServices []types.Service
	metaBaseURL       string
	metaFsOptions     []storage.Option
	browserOptions    []browser.Option
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	s.actions = extension.NewActions(s.extensionTypes...)
	s.executor = executor.New(s.actions)
	s.actions.Register(nop.New())
	s.actions.Register(browser.New(s.browserOptions...))
	s.actions.Register(record.New(s.cards, s.auditLog))
	for _, service := range s.extensionServices {
		s.actions.Register(service)
	}
	s.runtime = &Runtime{
		skillDAO: s.skillDAO,
		registry: s.registry,
		executor: s.executor,
		cards:    s.cards,
		gate:     s.gate,
		auditLog: s.auditLog,
		approvalListener: listener.NewApprovalListener(s.gate, s.cards, s.registry, s.executor, s.auditLog,
			listener.WithApprovalInterval(s.config.ApprovalInterval)),
		reviewListener: listener.NewReviewListener(s.cards, s.auditLog,
			listener.WithReviewInterval(s.config.ReviewInterval)),
		approvalEnabled: !s.config.DisableApprovalListener,
		reviewEnabled:   !s.config.DisableReviewListener,
	}
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if s.metaService == nil {
		s.metaService = meta.New(afs.New(), s.metaBaseURL, s.metaFsOptions...)
	}
	if s.skillDAO == nil {
		s.skillDAO = skill.New(skill.WithMetaService(s.metaService))
	}
	if s.registry == nil {
		s.registry = matcher.New(s.config.MatchThreshold)
	}
	if s.cards == nil {
		s.cards = cardstore.New()
	}
	if s.auditLog == nil {
		s.auditLog = actionlog.New()
	}
	if s.gate == nil {
		s.gate = approvalmem.New(s.cards)
	}
}

// RegisterExtensionTypes registers data types with the action registry.
func (s *Service) RegisterExtensionTypes(types ...*x.Type) {
	for i := range types {
		s.actions.Types().Register(types[i])
	}
}

// RegisterExtensionServices registers additional tool services.
func (s *Service) RegisterExtensionServices(services ...types.Service) {
	for i := range services {
		s.actions.Register(services[i])
	}
}

// Runtime returns the engine runtime.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// New creates a skill engine service.
func New(options ...Option) *Service {
	ret := &Service{}
	ret.init(options)
	return ret
}
