// Package godaq provides a layered abstraction for data acquisition hardware,
// separating raw communication channels from device logic and register views.
//
// # Architecture
//
// Three stacked layers, each borrowing (never owning) the layer below:
//
//	┌─────────────────────────────────────┐
//	│         Register Layer              │  Register-level views
//	│        (register.Register)          │  of device state
//	└─────────────────────────────────────┘
//	           ↓ borrows
//	┌─────────────────────────────────────┐
//	│         Hardware Layer              │  Device drivers
//	│  (hardware.Driver / MuxedDriver)    │  (direct or addressed bus)
//	└─────────────────────────────────────┘
//	           ↓ borrows
//	┌─────────────────────────────────────┐
//	│         Transfer Layer              │  Communication channels
//	│ (transfer.DirectInterface / Muxed)  │  TCP, UDP, serial, dummies
//	└─────────────────────────────────────┘
//
// A complete stack is declared in a YAML device description and built by the
// device package: interfaces first, then drivers (referencing interfaces by
// name), then registers (referencing drivers by name). All components share
// the lifecycle contract of the component package: idempotent Init/Close
// with forced-retry semantics and configuration validation at construction.
//
// # Addressing models
//
// Direct interfaces exchange plain byte sequences with a single endpoint.
// Muxed interfaces add a 64-bit bus address to every access for channels
// shared by multiple devices; muxed drivers additionally expose the
// register-style data protocol (GetData/SetData/Exec/IsDone) consumed by the
// register layer.
//
// # I/O runtime
//
// Socket-backed channels execute their blocking operations on the shared
// ioruntime worker pool. Start it before initializing a device with socket
// interfaces and stop it after closing them:
//
//	guard, err := ioruntime.NewGuard(2)
//	if err != nil { ... }
//	defer guard.Release()
//
//	dev, err := device.New(description)
//	if err != nil { ... }
//	if err := dev.Init(false); err != nil { ... }
//	defer dev.Close(true)
//
// Bounded waits that expire cancel the in-flight operation cleanly; partial
// data stays buffered and the expired wait is reported as a distinguished
// timeout error (errors.IsTimeout).
package godaq
