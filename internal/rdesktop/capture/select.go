package capture

import "github.com/breeze-rmm/rdportal/internal/rdesktop/envinfo"

// SelectTier applies the §4.2 ordering rules to an environment descriptor
// and returns the tier the engine should construct.
func SelectTier(d envinfo.Descriptor) Tier {
	if !d.HasDisplaySession() {
		return None
	}
	if d.HasDRM && !(d.IsVM && d.GPUVendor.IsVirtualGPU()) {
		return Dmabuf
	}
	if d.HasRuntimeDir {
		return Shm
	}
	return Cpu
}
