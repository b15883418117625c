package resolve

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"srvsync/internal/discovery"
)

// fakeResolver implements Resolver with canned answers for testing.
type fakeResolver struct {
	mu           sync.Mutex
	services     map[string][]SRVRecord
	serviceErrs  map[string]error
	addresses    map[string][]string
	addressErrs  map[string]error
	addressCalls []string
	blockService bool
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		services:    make(map[string][]SRVRecord),
		serviceErrs: make(map[string]error),
		addresses:   make(map[string][]string),
		addressErrs: make(map[string]error),
	}
}

func (f *fakeResolver) LookupService(ctx context.Context, name string) ([]SRVRecord, error) {
	if f.blockService {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.serviceErrs[name]; ok {
		return nil, err
	}
	return f.services[name], nil
}

func (f *fakeResolver) LookupAddress(ctx context.Context, host string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addressCalls = append(f.addressCalls, host)
	if err, ok := f.addressErrs[host]; ok {
		return nil, err
	}
	return f.addresses[host], nil
}

func (f *fakeResolver) addressLookups() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := make([]string, len(f.addressCalls))
	copy(calls, f.addressCalls)
	return calls
}

func newTestResolver(fake *fakeResolver, policy FailurePolicy) *ServiceResolver {
	return NewServiceResolver(Config{
		Resolver:  fake,
		Timeout:   time.Second,
		OnFailure: policy,
	})
}

func TestResolveAll_TwoStageLookup(t *testing.T) {
	fake := newFakeResolver()
	fake.services["cache.svc"] = []SRVRecord{
		{Target: "b.node.", Port: 80, Priority: 1, Weight: 10},
		{Target: "a.node.", Port: 80, Priority: 1, Weight: 10},
	}
	fake.addresses["a.node"] = []string{"10.0.0.1"}
	fake.addresses["b.node"] = []string{"10.0.0.2"}

	cache := discovery.NewCache()
	cache.Add("cache.svc")

	newTestResolver(fake, PolicyClear).ResolveAll(context.Background(), cache)

	endpoints, resolved := cache.Lookup("cache.svc")
	if !resolved {
		t.Fatal("expected cache.svc to resolve")
	}
	if len(endpoints) != 2 {
		t.Fatalf("expected 2 endpoints, got %d", len(endpoints))
	}
	// Sorted by name, trailing dot stripped, IPs from the address stage.
	if endpoints[0].Name != "a.node" || endpoints[0].IP != "10.0.0.1" {
		t.Errorf("unexpected first endpoint: %+v", endpoints[0])
	}
	if endpoints[1].Name != "b.node" || endpoints[1].IP != "10.0.0.2" {
		t.Errorf("unexpected second endpoint: %+v", endpoints[1])
	}
}

func TestResolveAll_LiteralAddressSkipsLookup(t *testing.T) {
	fake := newFakeResolver()
	fake.services["cache.svc"] = []SRVRecord{
		{Target: "10.1.2.3", Port: 6379},
		{Target: "2001:db8::1", Port: 6379},
	}

	cache := discovery.NewCache()
	cache.Add("cache.svc")

	newTestResolver(fake, PolicyClear).ResolveAll(context.Background(), cache)

	if calls := fake.addressLookups(); len(calls) != 0 {
		t.Errorf("expected no address lookups for literal targets, got %v", calls)
	}

	endpoints, resolved := cache.Lookup("cache.svc")
	if !resolved {
		t.Fatal("expected cache.svc to resolve")
	}
	for _, endpoint := range endpoints {
		if endpoint.IP != endpoint.Name {
			t.Errorf("expected literal target to be used as IP, got %+v", endpoint)
		}
	}
}

func TestResolveAll_FailureIsolatedPerKey(t *testing.T) {
	fake := newFakeResolver()
	fake.serviceErrs["broken.svc"] = errors.New("NXDOMAIN")
	fake.services["cache.svc"] = []SRVRecord{{Target: "10.0.0.1", Port: 80}}

	cache := discovery.NewCache()
	cache.Add("broken.svc")
	cache.Add("cache.svc")

	newTestResolver(fake, PolicyClear).ResolveAll(context.Background(), cache)

	if _, resolved := cache.Lookup("broken.svc"); resolved {
		t.Error("expected broken.svc to stay unresolved")
	}
	if _, resolved := cache.Lookup("cache.svc"); !resolved {
		t.Error("expected cache.svc to resolve despite sibling failure")
	}
}

func TestResolveAll_OneTargetFailureFailsWholeKey(t *testing.T) {
	fake := newFakeResolver()
	fake.services["cache.svc"] = []SRVRecord{
		{Target: "a.node", Port: 80},
		{Target: "b.node", Port: 80},
	}
	fake.addresses["a.node"] = []string{"10.0.0.1"}
	fake.addressErrs["b.node"] = errors.New("timeout")

	cache := discovery.NewCache()
	cache.Add("cache.svc")

	newTestResolver(fake, PolicyClear).ResolveAll(context.Background(), cache)

	if _, resolved := cache.Lookup("cache.svc"); resolved {
		t.Error("expected key with one failing target to be unresolved, not a partial list")
	}
}

func TestResolveAll_EmptyAddressAnswerFailsKey(t *testing.T) {
	fake := newFakeResolver()
	fake.services["cache.svc"] = []SRVRecord{{Target: "a.node", Port: 80}}
	fake.addresses["a.node"] = nil

	cache := discovery.NewCache()
	cache.Add("cache.svc")

	newTestResolver(fake, PolicyClear).ResolveAll(context.Background(), cache)

	if _, resolved := cache.Lookup("cache.svc"); resolved {
		t.Error("expected empty address answer to fail the key")
	}
}

func TestResolveAll_ClearPolicyDropsPriorData(t *testing.T) {
	fake := newFakeResolver()
	fake.services["cache.svc"] = []SRVRecord{{Target: "10.0.0.1", Port: 80}}

	cache := discovery.NewCache()
	cache.Add("cache.svc")

	resolver := newTestResolver(fake, PolicyClear)
	resolver.ResolveAll(context.Background(), cache)
	if _, resolved := cache.Lookup("cache.svc"); !resolved {
		t.Fatal("expected first cycle to resolve")
	}

	fake.mu.Lock()
	fake.serviceErrs["cache.svc"] = errors.New("SERVFAIL")
	fake.mu.Unlock()

	resolver.ResolveAll(context.Background(), cache)
	if _, resolved := cache.Lookup("cache.svc"); resolved {
		t.Error("expected clear policy to drop prior endpoints on failure")
	}
}

func TestResolveAll_RetainPolicyKeepsLastKnownGood(t *testing.T) {
	fake := newFakeResolver()
	fake.services["cache.svc"] = []SRVRecord{{Target: "10.0.0.1", Port: 80}}

	cache := discovery.NewCache()
	cache.Add("cache.svc")

	resolver := newTestResolver(fake, PolicyRetain)
	resolver.ResolveAll(context.Background(), cache)

	fake.mu.Lock()
	fake.serviceErrs["cache.svc"] = errors.New("SERVFAIL")
	fake.mu.Unlock()

	resolver.ResolveAll(context.Background(), cache)

	endpoints, resolved := cache.Lookup("cache.svc")
	if !resolved {
		t.Fatal("expected retain policy to keep last known endpoints")
	}
	if len(endpoints) != 1 || endpoints[0].IP != "10.0.0.1" {
		t.Errorf("unexpected retained endpoints: %+v", endpoints)
	}
}

func TestResolveAll_TimeoutSurfacesAsKeyFailure(t *testing.T) {
	fake := newFakeResolver()
	fake.blockService = true

	cache := discovery.NewCache()
	cache.Add("slow.svc")

	resolver := NewServiceResolver(Config{
		Resolver:  fake,
		Timeout:   10 * time.Millisecond,
		OnFailure: PolicyClear,
	})

	done := make(chan struct{})
	go func() {
		resolver.ResolveAll(context.Background(), cache)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected timeout to unblock the resolution")
	}

	if _, resolved := cache.Lookup("slow.svc"); resolved {
		t.Error("expected timed-out key to be unresolved")
	}
}
