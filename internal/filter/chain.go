package filter

// Filter is any path or content filter. A value implementing both interfaces takes
// part in both phases of a chain.
type Filter interface {
	Name() string
}

// Phase tells which half of a chain rejected a file.
type Phase string

const (
	PhasePath    Phase = "path"
	PhaseContent Phase = "content"
)

// Rejection records the first filter that rejected a file
type Rejection struct {
	Filter string
	Phase  Phase
}

func (r Rejection) String() string {
	return r.Phase.String() + " filter " + r.Filter
}

func (p Phase) String() string { return string(p) }

// Chain is the logical AND of its filters. Path filters run before content filters and
// evaluation stops at the first rejection.
type Chain struct {
	filters  []Filter
	paths    []PathFilter
	contents []ContentFilter
}

// NewChain builds a chain. Filters implementing neither PathFilter nor ContentFilter
// are ignored.
func NewChain(filters ...Filter) *Chain {
	c := &Chain{}
	for _, f := range filters {
		if f == nil {
			continue
		}
		added := false
		if pf, ok := f.(PathFilter); ok {
			c.paths = append(c.paths, pf)
			added = true
		}
		if cf, ok := f.(ContentFilter); ok {
			c.contents = append(c.contents, cf)
			added = true
		}
		if added {
			c.filters = append(c.filters, f)
		}
	}
	return c
}

// Filters returns the chain members in construction order
func (c *Chain) Filters() []Filter {
	return append([]Filter(nil), c.filters...)
}

// Without returns a copy of the chain minus the filters with the given name
func (c *Chain) Without(name string) *Chain {
	kept := make([]Filter, 0, len(c.filters))
	for _, f := range c.filters {
		if f.Name() != name {
			kept = append(kept, f)
		}
	}
	return NewChain(kept...)
}

// AcceptPath runs the path filters.
func (c *Chain) AcceptPath(path string) (bool, Rejection) {
	for _, f := range c.paths {
		if !f.AcceptPath(path) {
			return false, Rejection{Filter: f.Name(), Phase: PhasePath}
		}
	}
	return true, Rejection{}
}

// AcceptContent runs the content filters.
func (c *Chain) AcceptContent(path string, content []byte) (bool, Rejection) {
	for _, f := range c.contents {
		if !f.AcceptContent(path, content) {
			return false, Rejection{Filter: f.Name(), Phase: PhaseContent}
		}
	}
	return true, Rejection{}
}

// Accept runs both phases
func (c *Chain) Accept(path string, content []byte) (bool, Rejection) {
	if ok, r := c.AcceptPath(path); !ok {
		return false, r
	}
	return c.AcceptContent(path, content)
}
