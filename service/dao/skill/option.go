package skill

import (
	"github.com/viant/skillet/service/meta"
)

type Option func(*Service)

// WithMetaService sets the meta service used to fetch definition documents.
func WithMetaService(metaService *meta.Service) Option {
	return func(s *Service) {
		s.metaService = metaService
	}
}
