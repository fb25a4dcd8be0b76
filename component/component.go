// Package component defines the common contract shared by every layer
// component (transfer-layer interfaces, hardware drivers, registers) and the
// Base type that implements its lifecycle state machine.
//
// A component is constructed from a configuration tree, validated against the
// required-key tree of its concrete type, and then moved through an idempotent
// init/close cycle. All higher layers build on this package.
package component

import (
	"github.com/flooklab/godaq/config"
)

// Layer identifies which of the three stacked abstraction layers a component
// belongs to.
type Layer int

const (
	// TransferLayer components wrap raw communication channels.
	TransferLayer Layer = iota
	// HardwareLayer components drive concrete devices over an interface.
	HardwareLayer
	// RegisterLayer components expose register-level views on top of a driver.
	RegisterLayer
)

// String returns the lower-case layer name.
func (l Layer) String() string {
	switch l {
	case TransferLayer:
		return "transfer"
	case HardwareLayer:
		return "hardware"
	case RegisterLayer:
		return "register"
	default:
		return "unknown"
	}
}

// noun returns the instance noun used in self-descriptions and log context.
func (l Layer) noun() string {
	switch l {
	case TransferLayer:
		return "interface"
	case HardwareLayer:
		return "driver"
	case RegisterLayer:
		return "register"
	default:
		return "component"
	}
}

// Component is the contract implemented by every layer component.
//
// Init and Close are idempotent: calling Init on an initialized component (or
// Close on a closed one) is a no-op unless force is set, in which case the
// component runs the transition again regardless of its recorded state.
type Component interface {
	// Layer returns the abstraction layer this component belongs to.
	Layer() Layer
	// Type returns the registered type name of the component.
	Type() string
	// Name returns the configured instance name.
	Name() string
	// SelfDescription returns the canonical human-readable identity string,
	// e.g. `"TCP"-interface instance "trx0"`.
	SelfDescription() string

	// Init brings the component into its operational state.
	Init(force bool) error
	// Close releases the component's resources.
	Close(force bool) error
	// Initialized reports whether the last lifecycle transition left the
	// component operational.
	Initialized() bool

	// RuntimeConfig dumps the component's current runtime-tunable settings.
	// Components without runtime settings return an empty configuration.
	RuntimeConfig() (config.Config, error)
	// ApplyRuntimeConfig loads previously dumped runtime settings.
	ApplyRuntimeConfig(cfg config.Config) error
}
