// Package exclusion collects and validates contribution exclusions before
// any filtering runs. Exclusions come from three sources: explicit
// identifiers, explicit names, and the comma-separated
// stratum.contributions.exclude environment property.
package exclusion

import (
	"sort"
	"strings"

	"github.com/stratumcfg/stratum/pkg/errors"
	stringpool "github.com/stratumcfg/stratum/pkg/strings"
)

// ExcludeProperty is the environment key whose value contributes additional
// exclusions at resolution time.
const ExcludeProperty = "stratum.contributions.exclude"

// PropertyReader is the slice of the environment the builder needs.
type PropertyReader interface {
	GetStringSlice(key string) []string
}

// Build merges explicit identifiers, explicit names and the environment
// exclude property into one deduplicated list. First occurrence wins so the
// overall order stays stable across sources.
func Build(explicit, byName []string, env PropertyReader) []string {
	var fromEnv []string
	if env != nil {
		fromEnv = env.GetStringSlice(ExcludeProperty)
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, len(explicit)+len(byName)+len(fromEnv))
	for _, group := range [][]string{explicit, byName, fromEnv} {
		for _, id := range group {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// Validate rejects exclusions that are resolvable but were never discovered
// as candidates: excluding something that cannot exist is almost always a
// typo, and silently ignoring it would hide the mistake. All offenders are
// reported in a single error. Unresolvable identifiers are skipped — they
// may belong to optional components absent from this build.
func Validate(candidates, exclusions []string, resolvable func(string) bool) error {
	candidateSet := make(map[string]struct{}, len(candidates))
	for _, id := range candidates {
		candidateSet[id] = struct{}{}
	}

	var invalid []string
	for _, id := range exclusions {
		if _, ok := candidateSet[id]; ok {
			continue
		}
		if resolvable != nil && !resolvable(id) {
			continue
		}
		invalid = append(invalid, id)
	}
	if len(invalid) == 0 {
		return nil
	}

	sort.Strings(invalid)
	b := stringpool.GetBuilder(stringpool.Small)
	defer stringpool.PutBuilder(b, stringpool.Small)
	b.WriteString("the following contributions were excluded but are not candidates:")
	for _, id := range invalid {
		b.WriteString("\n\t- ")
		b.WriteString(id)
	}
	return errors.New(errors.ErrorTypeExclusion, b.String())
}

// Subtract removes excluded identifiers from the candidate list, preserving
// candidate order.
func Subtract(candidates, exclusions []string) []string {
	if len(exclusions) == 0 {
		return candidates
	}
	excluded := make(map[string]struct{}, len(exclusions))
	for _, id := range exclusions {
		excluded[id] = struct{}{}
	}
	out := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if _, skip := excluded[id]; skip {
			continue
		}
		out = append(out, id)
	}
	return out
}
