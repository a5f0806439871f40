package property

import (
	"strings"

	"github.com/stratumcfg/stratum/pkg/errors"
	stringpool "github.com/stratumcfg/stratum/pkg/strings"
)

const (
	placeholderPrefix = "${"
	placeholderSuffix = "}"
	defaultSeparator  = ":"
)

// Resolver evaluates ${key} and ${key:default} placeholders against a fully
// merged stack. Resolution is lazy: any layer can reference keys in any other
// layer regardless of load order. Placeholder values may themselves contain
// placeholders; reference cycles are detected and treated as unresolvable.
type Resolver struct {
	stack *Stack
}

// NewResolver creates a resolver over the given stack.
func NewResolver(stack *Stack) *Resolver {
	return &Resolver{stack: stack}
}

// Resolve replaces every resolvable placeholder in s. Unresolvable
// placeholders without a default are left in place.
func (r *Resolver) Resolve(s string) string {
	out, _ := r.resolve(s, map[string]bool{}, false)
	return out
}

// ResolveRequired replaces every placeholder in s and fails with a
// placeholder error when one cannot be resolved and carries no default.
func (r *Resolver) ResolveRequired(s string) (string, error) {
	return r.resolve(s, map[string]bool{}, true)
}

func (r *Resolver) resolve(s string, visiting map[string]bool, strict bool) (string, error) {
	if !strings.Contains(s, placeholderPrefix) {
		return s, nil
	}

	builder := stringpool.GetBuilder(stringpool.Small)
	defer stringpool.PutBuilder(builder, stringpool.Small)

	i := 0
	for i < len(s) {
		start := strings.Index(s[i:], placeholderPrefix)
		if start < 0 {
			builder.WriteString(s[i:])
			break
		}
		start += i
		builder.WriteString(s[i:start])

		end := matchSuffix(s, start)
		if end < 0 {
			// Unbalanced placeholder, emit verbatim.
			builder.WriteString(s[start:])
			break
		}

		// Inner text may itself contain placeholders (nested keys).
		inner, err := r.resolve(s[start+len(placeholderPrefix):end], visiting, strict)
		if err != nil {
			return "", err
		}
		key, fallback, hasFallback := splitFallback(inner)

		switch value, ok := r.lookup(key, visiting); {
		case visiting[key]:
			if strict {
				return "", errors.Newf(errors.ErrorTypePlaceholder,
					"circular placeholder reference for key %q", key)
			}
			builder.WriteString(s[start : end+1])
		case ok:
			visiting[key] = true
			resolved, err := r.resolve(value, visiting, strict)
			delete(visiting, key)
			if err != nil {
				return "", err
			}
			builder.WriteString(resolved)
		case hasFallback:
			builder.WriteString(fallback)
		case strict:
			return "", errors.Newf(errors.ErrorTypePlaceholder,
				"could not resolve placeholder %q", key)
		default:
			builder.WriteString(s[start : end+1])
		}

		i = end + 1
	}

	return builder.String(), nil
}

func (r *Resolver) lookup(key string, visiting map[string]bool) (string, bool) {
	if visiting[key] {
		return "", false
	}
	return r.stack.Lookup(key)
}

// matchSuffix finds the closing brace for the placeholder opening at start,
// accounting for nested placeholders. Returns -1 when unbalanced.
func matchSuffix(s string, start int) int {
	depth := 1
	for i := start + len(placeholderPrefix); i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], placeholderPrefix):
			depth++
			i++
		case s[i] == placeholderSuffix[0]:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func splitFallback(inner string) (key, fallback string, ok bool) {
	if i := strings.Index(inner, defaultSeparator); i >= 0 {
		return inner[:i], inner[i+len(defaultSeparator):], true
	}
	return inner, "", false
}
