package gas

// DefineFunc receives every mix the first time it is registered in a scope.
type DefineFunc func(Mix)

// Registry deduplicates mixes within one output document.
//
// It is not safe for concurrent use; the segmenter owns exactly one
// registry scope at a time.
type Registry struct {
	define DefineFunc
	seen   map[string]struct{}
}

// NewRegistry creates an empty registry scope. define may be nil.
func NewRegistry(define DefineFunc) *Registry {
	return &Registry{
		define: define,
		seen:   make(map[string]struct{}),
	}
}

// Register records m and returns its reference. added is false when the
// reference was already registered in the current scope.
func (r *Registry) Register(m Mix) (ref string, added bool) {
	if m.Ref == "" {
		m.Ref = Ref(m.O2, m.He)
	}
	if _, ok := r.seen[m.Ref]; ok {
		return m.Ref, false
	}
	r.seen[m.Ref] = struct{}{}
	if r.define != nil {
		r.define(m)
	}
	return m.Ref, true
}

// Has reports whether ref is registered in the current scope.
func (r *Registry) Has(ref string) bool {
	_, ok := r.seen[ref]
	return ok
}

// Finalize guarantees an air mix is defined, so that dives without any
// recorded tank usage can still switch to air on their first sample.
// It reports whether air had to be synthesized.
func (r *Registry) Finalize() bool {
	if r.Has(AirRef) {
		return false
	}
	_, added := r.Register(Air)
	return added
}

// Len returns the number of mixes registered in the current scope.
func (r *Registry) Len() int { return len(r.seen) }

// Reset starts a new document scope and routes future definitions to define.
func (r *Registry) Reset(define DefineFunc) {
	r.define = define
	r.seen = make(map[string]struct{})
}
