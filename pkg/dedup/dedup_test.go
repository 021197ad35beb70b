package dedup

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/trigen/pkg/bucket"
	"github.com/matzehuels/trigen/pkg/cache"
	"github.com/matzehuels/trigen/pkg/canon"
	"github.com/matzehuels/trigen/pkg/errors"
	"github.com/matzehuels/trigen/pkg/graph"
)

var (
	prismEdges = [][2]int{{1, 0}, {2, 0}, {2, 1}, {4, 3}, {5, 3}, {5, 4}, {3, 0}, {4, 1}, {5, 2}}
	k33Edges   = [][2]int{{3, 0}, {4, 0}, {5, 0}, {3, 1}, {4, 1}, {5, 1}, {3, 2}, {4, 2}, {5, 2}}
)

func mustGraph(t *testing.T, edges [][2]int) *graph.Graph {
	t.Helper()
	g, err := graph.FromEdges(6, "mn", edges)
	if err != nil {
		t.Fatalf("FromEdges: %v", err)
	}
	return g
}

func factories(t *testing.T) map[string]StoreFactory {
	t.Helper()
	ctx := context.Background()
	bf, err := OpenBadger("")
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	out := map[string]StoreFactory{
		"memory": NewMemoryFactory(),
		"badger": bf,
	}
	if addr := os.Getenv("TRIGEN_TEST_REDIS_ADDR"); addr != "" {
		rf, err := OpenRedis(ctx, addr, "trigen-test-"+uuid.NewString())
		if err != nil {
			t.Fatalf("OpenRedis: %v", err)
		}
		out["redis"] = rf
	}
	if uri := os.Getenv("TRIGEN_TEST_MONGO_URI"); uri != "" {
		mf, err := OpenMongo(ctx, uri, "trigen_test_"+uuid.NewString()[:8])
		if err != nil {
			t.Fatalf("OpenMongo: %v", err)
		}
		out["mongo"] = mf
	}
	return out
}

func TestStoreAdmitsOnce(t *testing.T) {
	ctx := context.Background()
	a, b := bucket.Of(6, 9, "rt"), bucket.Of(6, 10, "e1")
	for name, f := range factories(t) {
		t.Run(name, func(t *testing.T) {
			defer f.Close()
			sa, err := f.Open(ctx, a)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if ok, err := sa.Admit(ctx, "x"); err != nil || !ok {
				t.Fatalf("first Admit = (%v, %v), want (true, nil)", ok, err)
			}
			if ok, err := sa.Admit(ctx, "x"); err != nil || ok {
				t.Fatalf("second Admit = (%v, %v), want (false, nil)", ok, err)
			}
			if ok, _ := sa.Admit(ctx, "y"); !ok {
				t.Error("distinct certificate rejected")
			}

			sb, err := f.Open(ctx, b)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if ok, _ := sb.Admit(ctx, "x"); !ok {
				t.Error("certificate leaked across buckets")
			}

			again, err := f.Open(ctx, a)
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			if ok, _ := again.Admit(ctx, "x"); ok {
				t.Error("reopened store forgot admitted certificate")
			}
			if n, err := again.Len(ctx); err != nil || n != 2 {
				t.Errorf("Len = (%d, %v), want 2", n, err)
			}
		})
	}
}

func TestStoreConcurrentAdmit(t *testing.T) {
	ctx := context.Background()
	for name, f := range factories(t) {
		t.Run(name, func(t *testing.T) {
			defer f.Close()
			s, err := f.Open(ctx, bucket.Of(7, 11, "c1"))
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			var wins atomic.Int32
			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					ok, err := s.Admit(ctx, "same")
					if err != nil {
						t.Errorf("Admit: %v", err)
					}
					if ok {
						wins.Add(1)
					}
				}()
			}
			wg.Wait()
			if wins.Load() != 1 {
				t.Errorf("%d concurrent admissions succeeded, want 1", wins.Load())
			}
		})
	}
}

func TestDeduplicator(t *testing.T) {
	ctx := context.Background()
	d := New(nil, NewMemoryFactory())
	defer d.Close()

	b := bucket.Of(6, 9, "rt")
	relabeled := make([][2]int, len(prismEdges))
	perm := []int{3, 5, 1, 0, 2, 4}
	for i, e := range prismEdges {
		relabeled[i] = [2]int{perm[e[0]], perm[e[1]]}
	}

	steps := []struct {
		name  string
		b     bucket.Bucket
		edges [][2]int
		want  bool
	}{
		{"prism", b, prismEdges, true},
		{"relabeled prism", b, relabeled, false},
		{"K33", b, k33Edges, true},
		{"prism in other bucket", bucket.Of(6, 9, "e1"), prismEdges, true},
	}
	for _, s := range steps {
		ok, err := d.Admit(ctx, s.b, mustGraph(t, s.edges))
		if err != nil {
			t.Fatalf("%s: Admit: %v", s.name, err)
		}
		if ok != s.want {
			t.Errorf("%s: Admit = %v, want %v", s.name, ok, s.want)
		}
	}

	st, err := d.Store(ctx, b)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if n, _ := st.Len(ctx); n != 2 {
		t.Errorf("bucket %s holds %d certificates, want 2", b, n)
	}
}

func TestDeduplicatorInvalidBucket(t *testing.T) {
	d := New(nil, NewMemoryFactory())
	_, err := d.Admit(context.Background(), bucket.Of(6, 9, "BAD!"), mustGraph(t, prismEdges))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

type failingCertifier struct{}

func (failingCertifier) Certificate(canon.Graph) (canon.Certificate, error) {
	return "", errors.New(errors.ErrCodeInternal, "no")
}

func TestDeduplicatorOracleFailure(t *testing.T) {
	d := New(failingCertifier{}, NewMemoryFactory())
	_, err := d.Admit(context.Background(), bucket.Of(6, 9, "rt"), mustGraph(t, prismEdges))
	if !errors.Is(err, errors.ErrCodeOracleFailure) {
		t.Errorf("error = %v, want ORACLE_FAILURE", err)
	}
}

type countingCertifier struct {
	calls atomic.Int32
}

func (c *countingCertifier) Certificate(g canon.Graph) (canon.Certificate, error) {
	c.calls.Add(1)
	return canon.Canonical{}.Certificate(g)
}

func TestCachingCertifier(t *testing.T) {
	inner := &countingCertifier{}
	c := NewCachingCertifier(inner, cache.NewMemoryCache(), nil)

	g := mustGraph(t, prismEdges)
	first, err := c.Certificate(g)
	if err != nil {
		t.Fatalf("Certificate: %v", err)
	}
	second, err := c.Certificate(g)
	if err != nil {
		t.Fatalf("Certificate: %v", err)
	}
	if first != second {
		t.Errorf("cached certificate %q differs from computed %q", second, first)
	}
	if inner.calls.Load() != 1 {
		t.Errorf("inner certifier called %d times, want 1", inner.calls.Load())
	}
	if _, err := c.Certificate(mustGraph(t, k33Edges)); err != nil {
		t.Fatalf("Certificate: %v", err)
	}
	if inner.calls.Load() != 2 {
		t.Errorf("inner certifier called %d times, want 2", inner.calls.Load())
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		ok   bool
	}{
		{"memory", Options{Backend: "memory"}, true},
		{"badger in memory", Options{Backend: "badger"}, true},
		{"redis", Options{Backend: "redis", Addr: "localhost:6379"}, true},
		{"redis without addr", Options{Backend: "redis"}, false},
		{"mongo without uri", Options{Backend: "mongo"}, false},
		{"unknown", Options{Backend: "sqlite"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate: %v", err)
			}
			if !tt.ok && !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestOpenBadgerOnDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	f, err := Open(ctx, Options{Backend: "badger", Path: dir})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s, _ := f.Open(ctx, bucket.Of(6, 9, "rt"))
	if ok, _ := s.Admit(ctx, "persisted"); !ok {
		t.Fatal("first admit failed")
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err = Open(ctx, Options{Backend: "badger", Path: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()
	s, _ = f.Open(ctx, bucket.Of(6, 9, "rt"))
	if ok, _ := s.Admit(ctx, "persisted"); ok {
		t.Error("certificate lost across reopen")
	}
}
