package main

import (
	"context"

	"github.com/breeze-rmm/rdportal/internal/rdesktop/capture"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/envinfo"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/input"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/registry"
)

// cpuCaptureProvider backs the Cpu capture tier. It's always available:
// the default animated framebuffer needs no real display connection, so
// it's the guaranteed fallback the registry falls through to.
type cpuCaptureProvider struct{}

func (cpuCaptureProvider) ID() string     { return "capture.cpu" }
func (cpuCaptureProvider) Name() string   { return "CPU framebuffer copy" }
func (cpuCaptureProvider) Capabilities() []registry.Capability {
	return []registry.Capability{registry.CaptureScreen}
}
func (cpuCaptureProvider) IsAvailable(ctx context.Context) bool { return true }
func (cpuCaptureProvider) Construct(ctx context.Context) (any, error) {
	return capture.NewCpuBackend(nil), nil
}

// shmCaptureProvider and dmabufCaptureProvider report availability from
// the envinfo-driven tier selection, but this standalone binary has no
// real shared-memory or DRM channel to hand Construct — that plug-in
// point belongs to whatever process embeds this module inside an actual
// compositor. They exist so `probe` reports the tier a real deployment
// would select, without this CLI pretending to open a fake one.
type shmCaptureProvider struct{ desc envinfo.Descriptor }

func (p shmCaptureProvider) ID() string   { return "capture.shm" }
func (p shmCaptureProvider) Name() string { return "shared-memory copy" }
func (p shmCaptureProvider) Capabilities() []registry.Capability {
	return []registry.Capability{registry.CaptureScreen}
}
func (p shmCaptureProvider) IsAvailable(ctx context.Context) bool {
	return capture.SelectTier(p.desc) == capture.Shm
}
func (p shmCaptureProvider) Construct(ctx context.Context) (any, error) {
	return nil, notWiredError("shm")
}

type dmabufCaptureProvider struct{ desc envinfo.Descriptor }

func (p dmabufCaptureProvider) ID() string   { return "capture.dmabuf" }
func (p dmabufCaptureProvider) Name() string { return "DMA-BUF zero-copy" }
func (p dmabufCaptureProvider) Capabilities() []registry.Capability {
	return []registry.Capability{registry.CaptureScreen}
}
func (p dmabufCaptureProvider) IsAvailable(ctx context.Context) bool {
	return capture.SelectTier(p.desc) == capture.Dmabuf
}
func (p dmabufCaptureProvider) Construct(ctx context.Context) (any, error) {
	return nil, notWiredError("dmabuf")
}

// inputProvider advertises the virtual-input sink. The recording sink is
// always constructible; this binary constructs and wires only the
// RecordingSink, including when built with the dbus tag.
type inputProvider struct{}

func (inputProvider) ID() string   { return "input.sink" }
func (inputProvider) Name() string { return "virtual input sink" }
func (inputProvider) Capabilities() []registry.Capability {
	return []registry.Capability{registry.InjectKeyboard, registry.InjectPointer}
}
func (inputProvider) IsAvailable(ctx context.Context) bool { return true }
func (inputProvider) Construct(ctx context.Context) (any, error) {
	return input.NewRecordingSink(), nil
}

type notWiredError string

func (e notWiredError) Error() string {
	return "capture tier " + string(e) + " has no channel source wired into this binary"
}
