package types

// Service is the contract every tool (action) service implements. Steps
// delegate to a named service method; the engine only sequences the calls.
type Service interface {
	Name() string
	Methods() Signatures
	Method(name string) (Executable, error)
}
