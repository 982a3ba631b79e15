package ndarray

import (
	"github.com/gomlx/exceptions"

	"github.com/born-ml/strided/internal/protocol"
	"github.com/born-ml/strided/internal/registry"
)

// Implementation coerces arbitrary sources into arrays of this package.
// It is registered as the canonical representation.
type Implementation struct {
	Config Config
}

var _ protocol.Implementation = Implementation{}

// ImplementationKey returns Key.
func (Implementation) ImplementationKey() string {
	return Key
}

// Coerce returns source unchanged when it already is an array of this
// package, and a constructed copy otherwise.
func (impl Implementation) Coerce(source any) (protocol.Array, error) {
	if a, ok := source.(NDArray); ok {
		return a, nil
	}
	a, err := ConstructWith(source, impl.Config)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func init() {
	if err := registry.Register(Implementation{Config: DefaultConfig()}); err != nil {
		exceptions.Panicf("ndarray: registering %q: %v", Key, err)
	}
}
