package capture

// Tier is the totally ordered set of capture backends, strictly
// increasing in quality: None < Cpu < Shm < Dmabuf.
type Tier int

const (
	None Tier = iota
	Cpu
	Shm
	Dmabuf
)

func (t Tier) HasCapture() bool {
	return t != None
}

func (t Tier) String() string {
	switch t {
	case Cpu:
		return "cpu"
	case Shm:
		return "shm"
	case Dmabuf:
		return "dmabuf"
	default:
		return "none"
	}
}

// EstimatedLatencyMS is an informational advisory only; nothing in the
// engine blocks on it.
func (t Tier) EstimatedLatencyMS() int {
	switch t {
	case Dmabuf:
		return 4
	case Shm:
		return 12
	case Cpu:
		return 33
	default:
		return 0
	}
}

// Capabilities is the static, advisory descriptor for a tier, constructed
// once with fixed values per §3's "Capabilities descriptor". It never
// touches a lock: each tier caches its own Capabilities at construction
// time (see the Backend doc in engine.go).
type Capabilities struct {
	Tier                 Tier
	SupportedFormats     []FrameFormat
	MaxFPS               int
	HardwareEncoding     bool
	EstimatedCPUOverhead uint8
	Description          string
}

func dmabufCapabilities() Capabilities {
	return Capabilities{
		Tier:                 Dmabuf,
		SupportedFormats:     []FrameFormat{Bgra8888, Xrgb8888, Xbgr8888},
		MaxFPS:               60,
		HardwareEncoding:     true,
		EstimatedCPUOverhead: 10,
		Description:          "zero-copy GPU buffer handoff via DRM dmabuf",
	}
}

func shmCapabilities() Capabilities {
	return Capabilities{
		Tier:                 Shm,
		SupportedFormats:     []FrameFormat{Bgra8888, Rgba8888},
		MaxFPS:               60,
		HardwareEncoding:     false,
		EstimatedCPUOverhead: 15,
		Description:          "shared-memory frame copy via the compositor's capture channel",
	}
}

func cpuCapabilities() Capabilities {
	return Capabilities{
		Tier:                 Cpu,
		SupportedFormats:     []FrameFormat{Rgba8888, Rgb888},
		MaxFPS:               30,
		HardwareEncoding:     false,
		EstimatedCPUOverhead: 20,
		Description:          "CPU-copy fallback, always available",
	}
}
