package inputsource

// Backend is the native input source API of the platform. Each method is one
// native call; implementations must not retry or wait internally.
type Backend interface {
	// ListSources returns the selectable keyboard sources known to the system.
	ListSources() ([]InputSource, error)
	// CurrentSource returns the active source. There is always exactly one.
	CurrentSource() (InputSource, error)
	// Select asks the system to activate the source. It may take effect
	// asynchronously.
	Select(id string) error
}
