package component

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/flooklab/godaq/config"
	"github.com/flooklab/godaq/errors"
)

// Base implements the identity, lifecycle and runtime-configuration parts of
// the Component contract. Concrete components embed a *Base and bind their
// type-specific behavior through BindHooks / BindRuntimeHooks.
//
// The lifecycle state machine: Init marks the component uninitialized before
// running the init hook, so a failed re-init never leaves a stale "ready"
// flag. Close keeps the component marked initialized when the close hook
// fails, so a later forced Close can retry the teardown.
type Base struct {
	layer    Layer
	typeName string
	name     string
	cfg      config.Config
	logger   *slog.Logger

	mu          sync.Mutex
	initialized bool

	initHook  func() error
	closeHook func() error

	dumpHook func() (config.Config, error)
	loadHook func(config.Config) error
}

// NewBase validates cfg against the required-key tree of the concrete type
// and returns the embedded lifecycle core. Validation failures carry both
// configuration dumps so the offending document is visible in the error.
func NewBase(layer Layer, typeName, name string, cfg, required config.Config) (*Base, error) {
	b := &Base{
		layer:    layer,
		typeName: typeName,
		name:     name,
		cfg:      cfg,
	}
	b.logger = slog.Default().With(
		"layer", layer.String(),
		"type", typeName,
		"name", name,
	)

	if !cfg.Contains(required, true) {
		return nil, errors.WrapConfig(
			fmt.Errorf("%w for %s: missing or ill-typed keys\nhave:\n%sneed:\n%s",
				errors.ErrMissingConfig, b.SelfDescription(), cfg.String(), required.String()),
			typeName, "NewBase", "configuration check")
	}

	return b, nil
}

// BindHooks installs the type-specific init and close transitions. A nil hook
// leaves the corresponding transition a no-op. Called once from the concrete
// constructor.
func (b *Base) BindHooks(init, close func() error) {
	b.initHook = init
	b.closeHook = close
}

// BindRuntimeHooks installs the type-specific runtime-configuration dump and
// load functions. Nil hooks keep the defaults (empty dump, no-op load).
func (b *Base) BindRuntimeHooks(load func(config.Config) error, dump func() (config.Config, error)) {
	b.loadHook = load
	b.dumpHook = dump
}

// Layer returns the abstraction layer of the component.
func (b *Base) Layer() Layer { return b.layer }

// Type returns the registered type name.
func (b *Base) Type() string { return b.typeName }

// Name returns the configured instance name.
func (b *Base) Name() string { return b.name }

// Config returns the component's configuration tree.
func (b *Base) Config() config.Config { return b.cfg }

// Logger returns the component-scoped structured logger.
func (b *Base) Logger() *slog.Logger { return b.logger }

// SelfDescription returns the canonical identity string,
// e.g. `"Serial"-interface instance "uart1"`.
func (b *Base) SelfDescription() string {
	return fmt.Sprintf("%q-%s instance %q", b.typeName, b.layer.noun(), b.name)
}

// Init runs the init transition. Already-initialized components return
// immediately unless force is set.
func (b *Base) Init(force bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized && !force {
		return nil
	}
	b.initialized = false

	if b.initHook != nil {
		if err := b.initHook(); err != nil {
			b.logger.Error("init failed", "error", err)
			return errors.Wrap(err, b.typeName, "Init", "initializing "+b.SelfDescription())
		}
	}

	b.initialized = true
	b.logger.Debug("initialized")
	return nil
}

// Close runs the close transition. Already-closed components return
// immediately unless force is set. On failure the component stays marked
// initialized so a forced retry remains possible.
func (b *Base) Close(force bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized && !force {
		return nil
	}

	if b.closeHook != nil {
		if err := b.closeHook(); err != nil {
			b.logger.Error("close failed", "error", err)
			return errors.Wrap(err, b.typeName, "Close", "closing "+b.SelfDescription())
		}
	}

	b.initialized = false
	b.logger.Debug("closed")
	return nil
}

// Initialized reports the recorded lifecycle state.
func (b *Base) Initialized() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.initialized
}

// RuntimeConfig dumps the runtime-tunable settings of the component.
func (b *Base) RuntimeConfig() (config.Config, error) {
	if b.dumpHook == nil {
		return config.New(), nil
	}
	cfg, err := b.dumpHook()
	if err != nil {
		return config.New(), errors.Wrap(err, b.typeName, "RuntimeConfig",
			"dumping runtime configuration of "+b.SelfDescription())
	}
	return cfg, nil
}

// ApplyRuntimeConfig loads previously dumped runtime settings.
func (b *Base) ApplyRuntimeConfig(cfg config.Config) error {
	if b.loadHook == nil {
		return nil
	}
	if err := b.loadHook(cfg); err != nil {
		return errors.Wrap(err, b.typeName, "ApplyRuntimeConfig",
			"loading runtime configuration of "+b.SelfDescription())
	}
	return nil
}
