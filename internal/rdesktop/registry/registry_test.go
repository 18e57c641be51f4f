package registry

import (
	"context"
	"testing"
	"time"
)

type fakeProvider struct {
	id        string
	caps      []Capability
	available bool
	delay     time.Duration
	built     any
}

func (f *fakeProvider) ID() string                 { return f.id }
func (f *fakeProvider) Name() string                { return f.id }
func (f *fakeProvider) Capabilities() []Capability { return f.caps }
func (f *fakeProvider) IsAvailable(ctx context.Context) bool {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.available
}
func (f *fakeProvider) Construct(ctx context.Context) (any, error) {
	return f.built, nil
}

func TestFindByCapabilityPreservesOrder(t *testing.T) {
	r := New()
	r.Register(&fakeProvider{id: "a", caps: []Capability{CaptureScreen}, available: true})
	r.Register(&fakeProvider{id: "b", caps: []Capability{InjectKeyboard}, available: true})
	r.Register(&fakeProvider{id: "c", caps: []Capability{CaptureScreen}, available: true})

	got := r.FindByCapability(CaptureScreen)
	if len(got) != 2 || got[0].ID() != "a" || got[1].ID() != "c" {
		t.Fatalf("FindByCapability order = %v, want [a c]", idsOf(got))
	}
}

func TestFindAvailableFiltersAndPreservesOrder(t *testing.T) {
	r := New()
	r.Register(&fakeProvider{id: "a", available: true})
	r.Register(&fakeProvider{id: "b", available: false})
	r.Register(&fakeProvider{id: "c", available: true})

	got := r.FindAvailable(context.Background())
	if len(got) != 2 || got[0].ID() != "a" || got[1].ID() != "c" {
		t.Fatalf("FindAvailable = %v, want [a c]", idsOf(got))
	}
}

func TestFindAvailableRunsInParallel(t *testing.T) {
	r := New()
	const slowest = 100 * time.Millisecond
	for i := 0; i < 5; i++ {
		r.Register(&fakeProvider{id: string(rune('a' + i)), available: true, delay: slowest})
	}

	start := time.Now()
	r.FindAvailable(context.Background())
	elapsed := time.Since(start)

	if elapsed > slowest*2 {
		t.Fatalf("FindAvailable took %s, want close to the slowest single probe (%s), not serialized", elapsed, slowest)
	}
}

func TestFindBestAndCreateBestBackend(t *testing.T) {
	r := New()
	r.Register(&fakeProvider{id: "primary", available: false})
	r.Register(&fakeProvider{id: "fallback", available: true, built: "backend-handle"})

	p, ok := r.FindBest(context.Background())
	if !ok || p.ID() != "fallback" {
		t.Fatalf("FindBest = %v, %v, want fallback", p, ok)
	}

	backend, err := r.CreateBestBackend(context.Background())
	if err != nil || backend != "backend-handle" {
		t.Fatalf("CreateBestBackend = %v, %v", backend, err)
	}
}

func TestCreateBestBackendNoneAvailable(t *testing.T) {
	r := New()
	r.Register(&fakeProvider{id: "a", available: false})

	if _, err := r.CreateBestBackend(context.Background()); err == nil {
		t.Fatal("expected an error when no provider is available")
	}
}

func idsOf(ps []Provider) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID()
	}
	return out
}
