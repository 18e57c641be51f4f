// Package envinfo derives the environment descriptor that the capture
// tier selector and the mode resolver read once at process startup. It
// inspects sysfs/DMI strings, a CPU-info hypervisor flag, and a handful of
// environment variables — never anything that needs root or blocks.
package envinfo

import (
	"os"
	"strings"
	"sync"

	"github.com/breeze-rmm/rdportal/internal/rdplog"
)

var log = rdplog.L("envinfo")

// GPUVendor identifies the vendor behind a DRM device id, when known.
type GPUVendor int

const (
	GPUUnknown GPUVendor = iota
	GPUNVIDIA
	GPUAMD
	GPUIntel
	GPUVirtio
	GPUQEMU
)

func (v GPUVendor) String() string {
	switch v {
	case GPUNVIDIA:
		return "nvidia"
	case GPUAMD:
		return "amd"
	case GPUIntel:
		return "intel"
	case GPUVirtio:
		return "virtio"
	case GPUQEMU:
		return "qemu"
	default:
		return "unknown"
	}
}

// IsVirtualGPU reports whether vendor names a software/virtual GPU, the
// class the tier selector refuses to hand Dmabuf to.
func (v GPUVendor) IsVirtualGPU() bool {
	return v == GPUVirtio || v == GPUQEMU
}

// vendorIDs maps a PCI vendor id (as printed in /sys/class/drm's
// device/vendor file, e.g. "0x10de") to a GPUVendor.
var vendorIDs = map[string]GPUVendor{
	"0x10de": GPUNVIDIA,
	"0x1002": GPUAMD,
	"0x8086": GPUIntel,
	"0x1af4": GPUVirtio,
	"0x1234": GPUQEMU,
}

// Descriptor is the environment snapshot consumed by capture tier
// selection and the mode resolver.
type Descriptor struct {
	IsVM               bool
	HasDRM             bool
	DisplaySessionName string // "" when no display session is present
	HasRuntimeDir      bool
	GPUVendor          GPUVendor
}

// HasDisplaySession reports whether a display session is present at all.
func (d Descriptor) HasDisplaySession() bool {
	return d.DisplaySessionName != ""
}

var dmiWarnOnce sync.Once

func readSysfs(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// warnOnceDMIUnavailable logs, at most once per process, that chassis
// identification isn't readable — typically because the process isn't
// running as root or is inside a container without /sys/class/dmi
// exposed. It never fails the probe: an unreadable DMI string just can't
// contribute to the VM/physical classification.
func warnOnceDMIUnavailable() {
	dmiWarnOnce.Do(func() {
		log.Warn("DMI chassis data unavailable, VM detection relies on cpuinfo only")
	})
}

// Detect builds the Descriptor by inspecting the process environment and
// a handful of well-known sysfs/DMI paths. It never blocks and never
// requires elevated privilege; missing files simply leave the
// corresponding field at its zero value.
func Detect() Descriptor {
	d := Descriptor{
		DisplaySessionName: os.Getenv("XDG_SESSION_TYPE"),
		HasRuntimeDir:      runtimeDirWritable(os.Getenv("XDG_RUNTIME_DIR")),
	}

	sysVendor := readSysfs("/sys/class/dmi/id/sys_vendor")
	if sysVendor == "" {
		warnOnceDMIUnavailable()
	}
	productName := readSysfs("/sys/class/dmi/id/product_name")
	cpuFlags := readSysfs("/proc/cpuinfo")

	d.IsVM = looksVirtual(sysVendor) || looksVirtual(productName) || strings.Contains(cpuFlags, "hypervisor")

	vendorID := readSysfs("/sys/class/drm/card0/device/vendor")
	if vendorID != "" {
		if v, ok := vendorIDs[strings.ToLower(vendorID)]; ok {
			d.GPUVendor = v
		}
	}

	if _, err := os.Stat("/dev/dri/renderD128"); err == nil {
		d.HasDRM = true
	}

	return d
}

func looksVirtual(s string) bool {
	s = strings.ToLower(s)
	for _, needle := range []string{"qemu", "kvm", "virtualbox", "vmware", "microsoft corporation", "xen"} {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

func runtimeDirWritable(dir string) bool {
	if dir == "" {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
