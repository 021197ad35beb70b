package cache

// ScopedKeyer prefixes every key of an inner Keyer. Runs sharing one cache
// directory use it to keep their step entries apart, e.g.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "data/:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// StepKey implements Keyer.
func (k *ScopedKeyer) StepKey(rule, bucket, inputDigest string, opts StepKeyOpts) string {
	return k.prefix + k.inner.StepKey(rule, bucket, inputDigest, opts)
}

// CertificateKey implements Keyer.
func (k *ScopedKeyer) CertificateKey(size int, adj []byte) string {
	return k.prefix + k.inner.CertificateKey(size, adj)
}
