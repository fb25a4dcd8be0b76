package hardware

import (
	"time"

	"github.com/flooklab/godaq/config"
	"github.com/flooklab/godaq/errors"
	"github.com/flooklab/godaq/transfer"
)

// TypeNameEcho is the registered type name of the echo driver.
const TypeNameEcho = "Echo"

// Echo is a direct driver that reads one unit of data from its interface and
// writes it straight back. Intended as a loopback aid for exercising a
// communication channel end to end.
//
// Configuration keys: size (bytes to read per round, default -1 =
// termination-based).
type Echo struct {
	*DirectBase
	size int
}

// NewEcho creates an echo driver.
func NewEcho(name string, intf transfer.DirectInterface, cfg config.Config) (*Echo, error) {
	base, err := NewDirectBase(TypeNameEcho, name, intf, cfg, config.New())
	if err != nil {
		return nil, err
	}

	size := cfg.GetInt("size", -1)
	if size < -1 {
		return nil, errors.WrapConfig(
			errors.New("size must be -1 (termination-based) or non-negative"),
			TypeNameEcho, "NewEcho", "configuring "+base.SelfDescription())
	}

	return &Echo{DirectBase: base, size: size}, nil
}

// Run performs one echo round: read the configured amount of data and write
// it back, both bounded by timeout.
func (e *Echo) Run(timeout time.Duration) error {
	data, err := e.Read(e.size, timeout)
	if err != nil {
		return errors.Wrap(err, TypeNameEcho, "Run", "reading echo payload")
	}
	if err := e.Write(data, timeout); err != nil {
		return errors.Wrap(err, TypeNameEcho, "Run", "writing echo payload")
	}
	e.Logger().Debug("echoed payload", "bytes", len(data))
	return nil
}
