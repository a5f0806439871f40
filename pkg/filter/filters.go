package filter

import (
	"github.com/stratumcfg/stratum/pkg/manifest"
)

// RequiresKeyFilter excludes candidates whose metadata names environment
// keys that are absent. A candidate with no requires attribute always
// survives.
type RequiresKeyFilter struct {
	ctx Context
}

// NewRequiresKeyFilter creates the filter.
func NewRequiresKeyFilter() *RequiresKeyFilter { return &RequiresKeyFilter{} }

func (f *RequiresKeyFilter) Name() string         { return "requires-key" }
func (f *RequiresKeyFilter) Requires() Capability { return CapEnvironment }
func (f *RequiresKeyFilter) Inject(ctx Context)   { f.ctx = ctx }

// Match keeps a candidate only when every required key resolves in the
// environment.
func (f *RequiresKeyFilter) Match(ids []string, meta *manifest.Metadata) []bool {
	out := make([]bool, len(ids))
	for i, id := range ids {
		out[i] = true
		if meta == nil {
			continue
		}
		for _, key := range meta.GetSet(id, manifest.AttrRequires) {
			if f.ctx.Environment == nil || !f.ctx.Environment.ContainsKey(key) {
				out[i] = false
				break
			}
		}
	}
	return out
}

// ProfileFilter excludes candidates whose metadata declares profiles the
// environment does not accept.
type ProfileFilter struct {
	ctx Context
}

// NewProfileFilter creates the filter.
func NewProfileFilter() *ProfileFilter { return &ProfileFilter{} }

func (f *ProfileFilter) Name() string         { return "profile" }
func (f *ProfileFilter) Requires() Capability { return CapEnvironment }
func (f *ProfileFilter) Inject(ctx Context)   { f.ctx = ctx }

// Match keeps a candidate when it declares no profiles, or when the
// environment accepts at least the declared set.
func (f *ProfileFilter) Match(ids []string, meta *manifest.Metadata) []bool {
	out := make([]bool, len(ids))
	for i, id := range ids {
		out[i] = true
		if meta == nil {
			continue
		}
		declared := meta.GetSet(id, manifest.AttrProfile)
		if len(declared) == 0 {
			continue
		}
		if f.ctx.Environment == nil || !f.ctx.Environment.AcceptsProfiles(declared...) {
			out[i] = false
		}
	}
	return out
}
