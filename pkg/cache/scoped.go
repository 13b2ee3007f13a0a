package cache

// ScopedKeyer prefixes every key of an inner Keyer. Servers that share one
// redis instance use it to keep deployments apart:
//
//	keyer := cache.NewScopedKeyer(nil, "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// GraphKey implements [Keyer].
func (k *ScopedKeyer) GraphKey(opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(opts)
}

// VariantTableKey implements [Keyer].
func (k *ScopedKeyer) VariantTableKey(graphHash, variantsHash string, chromosome int) string {
	return k.prefix + k.inner.VariantTableKey(graphHash, variantsHash, chromosome)
}
