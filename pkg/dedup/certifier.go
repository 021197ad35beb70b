package dedup

import (
	"context"

	"github.com/matzehuels/trigen/pkg/cache"
	"github.com/matzehuels/trigen/pkg/canon"
	"github.com/matzehuels/trigen/pkg/observability"
)

// byteGraph is a graph that exposes its packed adjacency.
type byteGraph interface {
	canon.Graph
	Bytes() []byte
}

// CachingCertifier memoizes certificates by adjacency bytes. Graphs that
// do not expose their bytes go straight to the inner certifier.
type CachingCertifier struct {
	inner canon.Certifier
	cache cache.Cache
	keyer cache.Keyer
}

// NewCachingCertifier wraps inner. A nil keyer means cache.DefaultKeyer.
func NewCachingCertifier(inner canon.Certifier, c cache.Cache, keyer cache.Keyer) *CachingCertifier {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CachingCertifier{inner: inner, cache: c, keyer: keyer}
}

// Certificate implements canon.Certifier. Cache failures fall back to
// computing the certificate.
func (c *CachingCertifier) Certificate(g canon.Graph) (canon.Certificate, error) {
	bg, ok := g.(byteGraph)
	if !ok {
		return c.inner.Certificate(g)
	}
	ctx := context.Background()
	key := c.keyer.CertificateKey(bg.Size(), bg.Bytes())
	if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "cert")
		return canon.Certificate(data), nil
	}
	observability.Cache().OnCacheMiss(ctx, "cert")

	cert, err := c.inner.Certificate(g)
	if err != nil {
		return "", err
	}
	if err := c.cache.Set(ctx, key, []byte(cert), 0); err == nil {
		observability.Cache().OnCacheSet(ctx, "cert", len(cert))
	}
	return cert, nil
}

var _ canon.Certifier = (*CachingCertifier)(nil)
