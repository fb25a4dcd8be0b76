package hardware

import (
	"fmt"
	"time"

	"github.com/flooklab/godaq/config"
	"github.com/flooklab/godaq/errors"
	"github.com/flooklab/godaq/transfer"
)

var muxedRequired = mustRequired("base_addr: uint")

func mustRequired(doc string) config.Config {
	cfg, err := config.FromYAML(doc)
	if err != nil {
		panic(err)
	}
	return cfg
}

// MuxedBase is the driver core for devices on an addressed bus. The immutable
// base address (config key base_addr) is added to the offset of every access,
// so driver code works in device-local offsets throughout.
//
// The register-style data protocol defaults to do-nothing implementations
// (empty GetData, ignored SetData, no-op Exec, IsDone false); concrete
// drivers override the hooks they support via BindDataHooks.
type MuxedBase struct {
	*Base
	intf     transfer.MuxedInterface
	baseAddr uint64

	getData func(size int, addrOffs uint64) ([]byte, error)
	setData func(data []byte, addrOffs uint64) error
	exec    func() error
	isDone  func() (bool, error)
}

// NewMuxedBase validates the configuration (which must carry an unsigned
// base_addr) and binds the borrowed interface.
func NewMuxedBase(typeName, name string, intf transfer.MuxedInterface,
	cfg, required config.Config) (*MuxedBase, error) {

	b, err := NewBase(typeName, name, cfg, required)
	if err != nil {
		return nil, err
	}
	if intf == nil {
		return nil, errors.WrapUsage(
			errors.New("no interface bound"), typeName, "NewMuxedBase",
			"constructing "+b.SelfDescription())
	}
	if !cfg.Contains(muxedRequired, true) {
		return nil, errors.WrapConfig(
			fmt.Errorf("%w: base_addr missing or not unsigned for %s",
				errors.ErrMissingConfig, b.SelfDescription()),
			typeName, "NewMuxedBase", "configuration check")
	}

	return &MuxedBase{
		Base:     b,
		intf:     intf,
		baseAddr: cfg.GetUint("base_addr", 0),
	}, nil
}

// BindDataHooks overrides the register-style protocol hooks. Nil entries keep
// the do-nothing defaults.
func (m *MuxedBase) BindDataHooks(
	getData func(size int, addrOffs uint64) ([]byte, error),
	setData func(data []byte, addrOffs uint64) error,
	exec func() error,
	isDone func() (bool, error),
) {
	m.getData = getData
	m.setData = setData
	m.exec = exec
	m.isDone = isDone
}

// Interface returns the borrowed transfer-layer interface.
func (m *MuxedBase) Interface() transfer.MuxedInterface {
	return m.intf
}

// BaseAddr returns the configured bus base address.
func (m *MuxedBase) BaseAddr() uint64 {
	return m.baseAddr
}

// Read reads size bytes from the bus at base address plus offset.
func (m *MuxedBase) Read(addrOffs uint64, size int, timeout time.Duration) ([]byte, error) {
	data, err := m.intf.Read(m.baseAddr+addrOffs, size, timeout)
	if err != nil {
		return nil, errors.Wrap(err, m.Type(), "Read", "reading via "+m.SelfDescription())
	}
	return data, nil
}

// Write writes data to the bus at base address plus offset.
func (m *MuxedBase) Write(addrOffs uint64, data []byte, timeout time.Duration) error {
	if err := m.intf.Write(m.baseAddr+addrOffs, data, timeout); err != nil {
		return errors.Wrap(err, m.Type(), "Write", "writing via "+m.SelfDescription())
	}
	return nil
}

// Query writes to and reads from the bus, both offsets relative to the base
// address.
func (m *MuxedBase) Query(writeAddrOffs, readAddrOffs uint64, data []byte, size int,
	timeout time.Duration) ([]byte, error) {

	result, err := m.intf.Query(m.baseAddr+writeAddrOffs, m.baseAddr+readAddrOffs,
		data, size, timeout)
	if err != nil {
		return nil, errors.Wrap(err, m.Type(), "Query", "querying via "+m.SelfDescription())
	}
	return result, nil
}

// GetData reads size bytes of device data at the given address offset.
func (m *MuxedBase) GetData(size int, addrOffs uint64) ([]byte, error) {
	if m.getData == nil {
		return []byte{}, nil
	}
	return m.getData(size, addrOffs)
}

// SetData writes device data at the given address offset.
func (m *MuxedBase) SetData(data []byte, addrOffs uint64) error {
	if m.setData == nil {
		return nil
	}
	return m.setData(data, addrOffs)
}

// Exec triggers the device operation configured by previous SetData calls.
func (m *MuxedBase) Exec() error {
	if m.exec == nil {
		return nil
	}
	return m.exec()
}

// IsDone reports whether a triggered device operation has finished.
func (m *MuxedBase) IsDone() (bool, error) {
	if m.isDone == nil {
		return false, nil
	}
	return m.isDone()
}
