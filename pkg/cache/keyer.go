package cache

import "strconv"

// Keyer names cache entries.
type Keyer interface {
	// StepKey names the cached result of applying rule to one input bucket
	// file whose content hashes to inputDigest.
	StepKey(rule, bucket, inputDigest string, opts StepKeyOpts) string

	// CertificateKey names the memoized certificate of a graph.
	CertificateKey(size int, adj []byte) string
}

// StepKeyOpts carries the settings that change a step's output.
type StepKeyOpts struct {
	Store   string `json:"store,omitempty"`
	DataDir string `json:"data_dir,omitempty"`
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// StepKey implements Keyer.
func (DefaultKeyer) StepKey(rule, bucket, inputDigest string, opts StepKeyOpts) string {
	return hashKey("step", rule, bucket, inputDigest, opts)
}

// CertificateKey implements Keyer. The adjacency bytes are hashed directly
// rather than through JSON.
func (DefaultKeyer) CertificateKey(size int, adj []byte) string {
	return "cert:" + strconv.Itoa(size) + ":" + Hash(adj)
}

var _ Keyer = DefaultKeyer{}
