package cache

// ScopedKeyer prefixes every key produced by an inner keyer, so that several
// deployments can share one Redis database.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or a [DefaultKeyer] when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// PlanKey implements [Keyer].
func (k *ScopedKeyer) PlanKey(inputHash, policy string) string {
	return k.prefix + k.inner.PlanKey(inputHash, policy)
}
