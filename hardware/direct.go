package hardware

import (
	"time"

	"github.com/flooklab/godaq/config"
	"github.com/flooklab/godaq/errors"
	"github.com/flooklab/godaq/transfer"
)

// DirectBase is the driver core for devices on a dedicated (non-addressed)
// channel. It borrows the interface and forwards byte-level access to it.
type DirectBase struct {
	*Base
	intf transfer.DirectInterface
}

// NewDirectBase validates the configuration and binds the borrowed interface.
func NewDirectBase(typeName, name string, intf transfer.DirectInterface,
	cfg, required config.Config) (*DirectBase, error) {

	b, err := NewBase(typeName, name, cfg, required)
	if err != nil {
		return nil, err
	}
	if intf == nil {
		return nil, errors.WrapUsage(
			errors.New("no interface bound"), typeName, "NewDirectBase",
			"constructing "+b.SelfDescription())
	}
	return &DirectBase{Base: b, intf: intf}, nil
}

// Interface returns the borrowed transfer-layer interface.
func (d *DirectBase) Interface() transfer.DirectInterface {
	return d.intf
}

// Read reads size bytes from the device channel.
func (d *DirectBase) Read(size int, timeout time.Duration) ([]byte, error) {
	data, err := d.intf.Read(size, timeout)
	if err != nil {
		return nil, errors.Wrap(err, d.Type(), "Read", "reading via "+d.SelfDescription())
	}
	return data, nil
}

// Write writes data to the device channel.
func (d *DirectBase) Write(data []byte, timeout time.Duration) error {
	if err := d.intf.Write(data, timeout); err != nil {
		return errors.Wrap(err, d.Type(), "Write", "writing via "+d.SelfDescription())
	}
	return nil
}

// Query performs a write-then-read round trip on the device channel.
func (d *DirectBase) Query(data []byte, size int, timeout time.Duration) ([]byte, error) {
	result, err := d.intf.Query(data, size, timeout)
	if err != nil {
		return nil, errors.Wrap(err, d.Type(), "Query", "querying via "+d.SelfDescription())
	}
	return result, nil
}
