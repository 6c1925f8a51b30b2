package skillet

import (
	"github.com/viant/afs/storage"
	"github.com/viant/skillet/model/types"
	"github.com/viant/skillet/service/action/browser"
	"github.com/viant/skillet/service/actionlog"
	"github.com/viant/skillet/service/approval"
	"github.com/viant/skillet/service/cardstore"
	"github.com/viant/skillet/service/meta"
	"github.com/viant/skillet/tracing"
	"github.com/viant/x"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customizes the skill engine service.
type Option func(s *Service)

// WithConfig sets the engine configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithApprovalService sets the approval gate.
func WithApprovalService(svc approval.Service) Option {
	return func(s *Service) { s.gate = svc }
}

// WithCardStore sets the action card store.
func WithCardStore(cards cardstore.Service) Option {
	return func(s *Service) { s.cards = cards }
}

// WithActionLog sets the action log backend.
func WithActionLog(log actionlog.Service) Option {
	return func(s *Service) { s.auditLog = log }
}

// WithExtensionTypes sets the extension types
func WithExtensionTypes(types ...*x.Type) Option {
	return func(s *Service) {
		s.extensionTypes = types
	}
}

// WithExtensionServices sets the extension tool services
func WithExtensionServices(services ...types.Service) Option {
	return func(s *Service) {
		s.extensionServices = services
	}
}

// WithMetaService sets the meta service
func WithMetaService(service *meta.Service) Option {
	return func(s *Service) {
		s.metaService = service
	}
}

// WithMetaBaseURL sets the meta base URL
func WithMetaBaseURL(url string) Option {
	return func(s *Service) {
		s.metaBaseURL = url
	}
}

// WithMetaFsOptions with meta file system options
func WithMetaFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.metaFsOptions = options
	}
}

// WithBrowserOptions passes options to the built-in browser tool service.
func WithBrowserOptions(options ...browser.Option) Option {
	return func(s *Service) {
		s.browserOptions = options
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile
// is empty the stdout exporter is used; otherwise traces are written to the
// supplied file path. The function is safe to call multiple times - the first
// successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter. This enables integrations with exporters other than the
// built-in stdout exporter, for example OTLP, Jaeger or Zipkin. The function
// is safe to call multiple times - the first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
