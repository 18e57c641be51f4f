package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/breeze-rmm/rdportal/internal/rdesktop/capture"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/consent"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/envinfo"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/event"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/input"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/mode"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/portal"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/portal/wsdemo"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/ratelimit"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/registry"
	"github.com/breeze-rmm/rdportal/internal/rdesktop/session"
	"github.com/breeze-rmm/rdportal/internal/rdpconfig"
	"github.com/breeze-rmm/rdportal/internal/rdplog"
	"github.com/breeze-rmm/rdportal/internal/workerpool"
)

var (
	version    = "0.1.0"
	cfgFile    string
	wsDemoAddr string
)

var log = rdplog.L("main")

var rootCmd = &cobra.Command{
	Use:   "rdportald",
	Short: "Remote-desktop control plane portal daemon",
	Long:  `rdportald hosts the remote-desktop portal: session lifecycle, capability discovery, consent and the compositor-side input/capture boundary.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the portal",
	Run: func(cmd *cobra.Command, args []string) {
		runPortal()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rdportald v%s\n", version)
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe the capability registry and print the resolved operating mode",
	Run: func(cmd *cobra.Command, args []string) {
		runProbe()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/rdportal/rdportal.yaml)")
	runCmd.Flags().StringVar(&wsDemoAddr, "ws-demo-addr", "", "if set, serve the JSON-over-websocket portal demo transport on this address (e.g. :8089)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(probeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() *rdpconfig.Config {
	cfg, warnings, err := rdpconfig.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	rdplog.Init(cfg.LogFormat, cfg.LogLevel, os.Stdout)
	log = rdplog.L("main")
	for _, w := range warnings {
		log.Warn("config warning", "warning", w)
	}
	return cfg
}

// buildRegistry registers every capture and input provider in priority
// order (Dmabuf, then Shm, then the always-available Cpu fallback) and
// returns it alongside the environment descriptor the providers were
// built against.
func buildRegistry() (*registry.Registry, envinfo.Descriptor) {
	desc := envinfo.Detect()
	reg := registry.New()
	reg.Register(dmabufCaptureProvider{desc: desc})
	reg.Register(shmCaptureProvider{desc: desc})
	reg.Register(cpuCaptureProvider{})
	reg.Register(inputProvider{})
	return reg, desc
}

func resolveMode(ctx context.Context, reg *registry.Registry) mode.Mode {
	available := reg.FindAvailable(ctx)
	hasCapture, hasInput := false, false
	for _, p := range available {
		for _, c := range p.Capabilities() {
			switch c {
			case registry.CaptureScreen:
				hasCapture = true
			case registry.InjectKeyboard, registry.InjectPointer:
				hasInput = true
			}
		}
	}
	return mode.FromCapabilities(hasCapture, hasInput)
}

func buildConsentGateway(cfg *rdpconfig.Config) consent.Gateway {
	switch cfg.ConsentMode {
	case "interactive":
		return consent.Interactive{Prompter: newStdinPrompter()}
	case "channel":
		gw, _ := consent.NewChannelBacked(8)
		log.Warn("consent_mode=channel has no external responder wired in this binary; requests will time out")
		return gw
	default:
		return consent.AutoApprove{}
	}
}

func runPortal() {
	cfg := loadConfig()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg, desc := buildRegistry()
	log.Info("environment detected", "is_vm", desc.IsVM, "has_drm", desc.HasDRM, "gpu_vendor", desc.GPUVendor, "display_session", desc.DisplaySessionName)

	resolvedMode := resolveMode(ctx, reg)
	log.Info("operating mode resolved", "mode", resolvedMode)

	limiter := ratelimit.New(ratelimit.Config{
		BurstLimit:      cfg.RateLimitBurst,
		Window:          time.Duration(cfg.RateLimitWindowSeconds) * time.Second,
		MaxEventsPerSec: cfg.RateLimitMaxEventsPerSec,
	})

	sessions := session.NewManager(cfg.MaxSessions, cfg.SessionQueueDepth, cfg.SessionQueueDepth*cfg.MaxSessions)
	ingress := input.NewService(limiter, cfg.SessionQueueDepth*cfg.MaxSessions)
	gateway := buildConsentGateway(cfg)
	p := portal.New(sessions, gateway, time.Duration(cfg.ConsentTimeoutSeconds)*time.Second, resolvedMode, ingress)

	sink := input.NewRecordingSink()
	dispatcher := input.NewDispatcher(ingress.Events(), sink)

	pool := workerpool.New(5, 5)
	pool.Submit(func() { dispatcher.Run(ctx) })
	pool.Submit(func() { ingress.Pump(ctx, sessions.CompositorBound()) })
	pool.Submit(func() { runCaptureDemo(ctx, reg, cfg.TargetFPS) })
	pool.Submit(func() { runDemoSession(ctx, p) })

	var wsServer *http.Server
	if wsDemoAddr != "" {
		wsServer = &http.Server{Addr: wsDemoAddr, Handler: wsdemo.New(p)}
		pool.Submit(func() {
			log.Info("ws demo transport listening", "addr", wsDemoAddr)
			if err := wsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warn("ws demo transport stopped", "err", err)
			}
		})
	}

	log.Info("rdportald running", "version", version, "max_sessions", cfg.MaxSessions)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down rdportald")
	cancel()
	if wsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
		wsServer.Shutdown(shutdownCtx)
		shutdownCancel()
	}
	sessions.CloseAll()

	drainCtx, drainCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer drainCancel()
	pool.Shutdown(drainCtx)

	log.Info("rdportald stopped")
}

// runCaptureDemo constructs the best available capture provider and
// streams frames, logging a periodic frame count, as a manual-inspection
// aid: the core never encodes or sends these frames anywhere per the
// module's non-goals around screen encoding and network transport.
func runCaptureDemo(ctx context.Context, reg *registry.Registry, targetFPS int) {
	var backend capture.Backend
	for _, p := range reg.FindByCapability(registry.CaptureScreen) {
		if !p.IsAvailable(ctx) {
			continue
		}
		built, err := p.Construct(ctx)
		if err != nil {
			continue
		}
		b, ok := built.(capture.Backend)
		if !ok {
			continue
		}
		backend = b
		break
	}
	if backend == nil {
		log.Warn("no capture provider could be constructed")
		return
	}

	sub, err := backend.StartStream(ctx, targetFPS)
	if err != nil {
		log.Warn("capture stream failed to start", "err", err)
		return
	}
	defer backend.StopStream()

	var frames uint64
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.Frames():
			if !ok {
				return
			}
			frames++
		case <-ticker.C:
			log.Info("capture demo frame count", "frames", frames)
		}
	}
}

// runDemoSession exercises the full Portal pipeline end to end as a
// manual-inspection aid, standing in for the wire transport the module
// deliberately doesn't ship: create, select devices, start, inject a
// few synthetic pointer moves, then close on shutdown.
func runDemoSession(ctx context.Context, p *portal.Portal) {
	id := event.SessionID("/demo/" + uuid.NewString())

	if _, err := p.CreateSession(id, "rdportald-demo"); err != nil {
		log.Warn("demo session create failed", "err", err)
		return
	}
	defer p.CloseSession(id)

	if err := p.SelectDevices(ctx, id, nil); err != nil {
		log.Warn("demo session select_devices failed", "err", err)
		return
	}
	if _, err := p.StartSession(id, nil); err != nil {
		log.Warn("demo session start failed", "err", err)
		return
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	var dx float64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dx++
			if err := p.NotifyPointerMotion(id, dx, 0); err != nil {
				log.Warn("demo session notify failed", "err", err)
				return
			}
		}
	}
}

func runProbe() {
	cfg := loadConfig()
	ctx := context.Background()

	reg, desc := buildRegistry()
	fmt.Printf("environment: is_vm=%v has_drm=%v gpu_vendor=%s display_session=%q has_runtime_dir=%v\n",
		desc.IsVM, desc.HasDRM, desc.GPUVendor, desc.DisplaySessionName, desc.HasRuntimeDir)

	for id, caps := range reg.QueryCapabilities() {
		fmt.Printf("provider %s advertises %v\n", id, caps)
	}

	available := reg.FindAvailable(ctx)
	fmt.Println("available providers:")
	for _, p := range available {
		fmt.Printf("  %s (%s)\n", p.ID(), p.Name())
	}

	resolvedMode := resolveMode(ctx, reg)
	fmt.Printf("resolved mode: %s (capture=%v input=%v)\n", resolvedMode, resolvedMode.HasCapture(), resolvedMode.HasInput())

	demoSession := event.SessionID("/probe/" + uuid.NewString())
	fmt.Printf("demo session id: %s\n", demoSession)

	_ = cfg
}
