package resolver

import (
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/stratumcfg/stratum/pkg/document"
	"github.com/stratumcfg/stratum/pkg/environment"
	"github.com/stratumcfg/stratum/pkg/errors"
	"github.com/stratumcfg/stratum/pkg/metrics"
	"github.com/stratumcfg/stratum/pkg/profile"
	"github.com/stratumcfg/stratum/pkg/property"
	"github.com/stratumcfg/stratum/pkg/resource"
)

// documentFilter decides whether one loaded document applies to the pass
// that probed it.
type documentFilter func(*document.Document) bool

// filterFactory builds a documentFilter for a given loading profile.
type filterFactory func(profile.Profile) documentFilter

// consumer receives an accepted document together with the profile that was
// being processed when it loaded.
type consumer func(profile.Profile, *document.Document)

// documentLoader drives one profile-aware loading pass: a work queue of
// profiles, seeded from the ambient environment, is drained front to back;
// each profile loads matching documents across every location, name and
// format combination. Documents may activate or include further profiles
// mid-loop. A final pass picks up documents for profiles that were never
// processed but that the environment would still accept.
type documentLoader struct {
	env       *environment.Environment
	resources resource.Loader
	opts      *Options
	loaders   []document.Loader
	cache     *document.Cache
	logger    *zap.Logger

	queue     []profile.Profile
	processed []profile.Profile
	activated bool

	bucketOrder []string
	buckets     map[string][]*property.Layer
	negative    []*property.Layer
}

func newDocumentLoader(ctx Context, opts *Options, logger *zap.Logger) *documentLoader {
	return &documentLoader{
		env:       ctx.Environment,
		resources: ctx.Resources,
		opts:      opts,
		loaders:   opts.loaders(),
		cache:     document.NewCache(),
		logger:    logger.With(zap.String("component", "document_loader")),
		buckets:   make(map[string][]*property.Layer),
	}
}

// load runs the full state machine and splices the result into the
// environment's property stack.
func (l *documentLoader) load() error {
	l.initProfiles()
	for len(l.queue) > 0 {
		p := l.queue[0]
		l.queue = l.queue[1:]
		if !p.IsSentinel() && !p.IsDefault() {
			l.env.AddActiveProfile(p.Name())
		}
		if err := l.loadForProfile(p, l.positiveFilter, l.addPositive); err != nil {
			return err
		}
		l.processed = append(l.processed, p)
	}
	l.resetEnvironmentProfiles()
	if err := l.loadForProfile(profile.Default, l.negativeFilter, l.addNegative); err != nil {
		return err
	}
	return l.apply()
}

// initProfiles seeds the work queue: the default sentinel first, then
// profiles already active in the environment, then profiles activated via
// the include/active properties. If only the sentinel remains, the
// configured default profile names stand in.
func (l *documentLoader) initProfiles() {
	l.queue = append(l.queue, profile.Default)

	viaProperty := l.profilesActivatedViaProperty()
	for _, name := range l.env.ActiveProfiles() {
		if !containsString(viaProperty, name) {
			l.queue = append(l.queue, profile.New(name))
		}
	}
	l.activateProfiles(viaProperty)

	if len(l.queue) == 1 {
		for _, name := range l.env.DefaultProfiles() {
			if name != "" {
				l.queue = append(l.queue, profile.NewDefault(name))
			}
		}
	}
}

// profilesActivatedViaProperty binds the include and active profile keys, in
// that order, deduplicated.
func (l *documentLoader) profilesActivatedViaProperty() []string {
	var out []string
	for _, key := range []string{environment.IncludeProfilesProperty, environment.ActiveProfilesProperty} {
		for _, name := range l.env.GetStringSlice(key) {
			if !containsString(out, name) {
				out = append(out, name)
			}
		}
	}
	return out
}

// activateProfiles appends freshly activated profiles to the queue. Only the
// first activation wins: later ones are ignored so a document loaded deep in
// the pass cannot override an earlier decision. Activation drops any pending
// default-name profiles, which only apply when nothing is activated at all.
func (l *documentLoader) activateProfiles(names []string) {
	if len(names) == 0 {
		return
	}
	if l.activated {
		l.logger.Debug("profiles already activated, ignoring",
			zap.Strings("profiles", names))
		return
	}
	for _, name := range names {
		if l.knownProfile(name) {
			continue
		}
		l.queue = append(l.queue, profile.New(name))
	}
	l.logger.Debug("profiles activated", zap.Strings("profiles", names))
	l.activated = true
	l.dropPendingDefaultProfiles()
}

// includeProfiles splices included profiles into the front of the queue so
// they resolve before anything already pending. Processed and queued
// profiles are skipped, which keeps recursive includes terminating.
func (l *documentLoader) includeProfiles(names []string) {
	if len(names) == 0 {
		return
	}
	var front []profile.Profile
	for _, name := range names {
		if l.knownProfile(name) {
			continue
		}
		front = append(front, profile.New(name))
	}
	if len(front) > 0 {
		l.queue = append(front, l.queue...)
	}
}

func (l *documentLoader) knownProfile(name string) bool {
	for _, p := range l.queue {
		if p.Name() == name {
			return true
		}
	}
	for _, p := range l.processed {
		if p.Name() == name {
			return true
		}
	}
	return false
}

func (l *documentLoader) dropPendingDefaultProfiles() {
	kept := l.queue[:0]
	for _, p := range l.queue {
		if !p.IsDefault() {
			kept = append(kept, p)
		}
	}
	l.queue = kept
}

// resetEnvironmentProfiles replaces the environment's active set with the
// processed non-default profiles in processing order, so includes discovered
// mid-loop end up reflected consistently.
func (l *documentLoader) resetEnvironmentProfiles() {
	var names []string
	for _, p := range l.processed {
		if !p.IsSentinel() && !p.IsDefault() {
			names = append(names, p.Name())
		}
	}
	l.env.SetActiveProfiles(names...)
}

// positiveFilter accepts documents declared for the profile being processed.
// The sentinel accepts only documents that declare no profiles at all.
func (l *documentLoader) positiveFilter(p profile.Profile) documentFilter {
	return func(doc *document.Document) bool {
		if p.IsSentinel() {
			return len(doc.Profiles) == 0
		}
		return containsProfileName(doc.Profiles, p.Name()) &&
			l.env.AcceptsProfiles(profileNames(doc.Profiles)...)
	}
}

// negativeFilter accepts documents that declare profiles which no processed
// profile matched, as long as the environment would still accept them.
func (l *documentLoader) negativeFilter(profile.Profile) documentFilter {
	return func(doc *document.Document) bool {
		return len(doc.Profiles) > 0 &&
			l.env.AcceptsProfiles(profileNames(doc.Profiles)...)
	}
}

func (l *documentLoader) loadForProfile(p profile.Profile, factory filterFactory, consume consumer) error {
	for _, location := range l.searchLocations() {
		if strings.HasSuffix(location, "/") {
			for _, name := range l.searchNames() {
				if err := l.loadLocation(location, name, p, factory, consume); err != nil {
					return err
				}
			}
			continue
		}
		if err := l.loadFile(location, p, factory, consume); err != nil {
			return err
		}
	}
	return nil
}

func (l *documentLoader) loadLocation(location, name string, p profile.Profile, factory filterFactory, consume consumer) error {
	seen := make(map[string]bool)
	for _, loader := range l.loaders {
		for _, ext := range loader.Extensions() {
			if seen[ext] {
				continue
			}
			seen[ext] = true
			if err := l.loadForFileExtension(loader, location+name, name, ext, p, factory, consume); err != nil {
				return err
			}
		}
	}
	return nil
}

// loadFile handles a search location that names a concrete file rather than
// a directory: the extension selects the loader and the file loads directly.
func (l *documentLoader) loadFile(location string, p profile.Profile, factory filterFactory, consume consumer) error {
	for _, loader := range l.loaders {
		for _, ext := range loader.Extensions() {
			if strings.HasSuffix(location, "."+ext) {
				base := strings.TrimSuffix(path.Base(location), "."+ext)
				return l.loadResource(loader, location, base, p, factory(p), consume)
			}
		}
	}
	return errors.Newf(errors.ErrorTypeResource,
		"file extension of config location %q is not known to any document loader", location)
}

// loadForFileExtension probes the profile-qualified filename variants first
// (under the unconditional filter, then the profile filter), then the
// qualified names of every previously processed profile, and finally the
// plain filename under the profile filter.
func (l *documentLoader) loadForFileExtension(loader document.Loader, prefix, name, ext string, p profile.Profile, factory filterFactory, consume consumer) error {
	defaultFilter := factory(profile.Default)
	profileFilter := factory(p)

	if !p.IsSentinel() {
		qualified := prefix + "-" + p.Name() + "." + ext
		if err := l.loadResource(loader, qualified, name, p, defaultFilter, consume); err != nil {
			return err
		}
		if err := l.loadResource(loader, qualified, name, p, profileFilter, consume); err != nil {
			return err
		}
		for _, prev := range l.processed {
			if prev.IsSentinel() {
				continue
			}
			previously := prefix + "-" + prev.Name() + "." + ext
			if err := l.loadResource(loader, previously, name, p, profileFilter, consume); err != nil {
				return err
			}
		}
	}
	return l.loadResource(loader, prefix+"."+ext, name, p, profileFilter, consume)
}

// loadResource loads one location. Missing resources and empty documents are
// normal skips; read or parse failures of an existing resource abort the
// pass. Accepted documents may activate or include further profiles.
func (l *documentLoader) loadResource(loader document.Loader, location, name string, p profile.Profile, accept documentFilter, consume consumer) error {
	res := l.resources.Get(location)
	if !res.Exists() {
		l.logger.Debug("skipped missing config resource", zap.String("location", location))
		return nil
	}
	if path.Ext(res.Name()) == "" {
		l.logger.Debug("skipped config resource without file extension",
			zap.String("location", location))
		return nil
	}

	docs, err := l.cache.Load(loader, name, res)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		l.logger.Debug("skipped empty config resource", zap.String("location", location))
		return nil
	}

	var loaded []*document.Document
	for _, doc := range docs {
		if !accept(doc) {
			continue
		}
		l.activateProfiles(doc.ActiveProfiles)
		l.includeProfiles(doc.IncludeProfiles)
		loaded = append(loaded, doc)
	}
	// Within one resource the last document wins, so consume in reverse.
	for i, j := 0, len(loaded)-1; i < j; i, j = i+1, j-1 {
		loaded[i], loaded[j] = loaded[j], loaded[i]
	}
	for _, doc := range loaded {
		consume(p, doc)
		metrics.DocumentsLoaded.WithLabelValues(loader.Name()).Inc()
	}
	if len(loaded) > 0 {
		l.logger.Debug("loaded config resource",
			zap.String("location", location), zap.Stringer("profile", p))
	}
	return nil
}

// searchLocations returns the locations to probe in processing order: most
// specific first. The location property replaces everything; the additional
// location property prepends entries that win over the configured set.
func (l *documentLoader) searchLocations() []string {
	if configured := l.env.GetStringSlice(ConfigLocationProperty); len(configured) > 0 {
		return reversed(configured)
	}
	locations := reversed(l.env.GetStringSlice(ConfigAdditionalLocationProperty))
	return append(locations, reversed(l.opts.searchLocations())...)
}

func (l *documentLoader) searchNames() []string {
	if configured := l.env.GetStringSlice(ConfigNameProperty); len(configured) > 0 {
		return reversed(configured)
	}
	return reversed(l.opts.searchNames())
}

func (l *documentLoader) addPositive(p profile.Profile, doc *document.Document) {
	key := p.Name()
	if _, ok := l.buckets[key]; !ok {
		l.bucketOrder = append(l.bucketOrder, key)
	}
	l.buckets[key] = append(l.buckets[key], doc.Layer)
}

// addNegative files documents from the final pass below everything
// positively matched. A layer whose name already landed in any bucket is
// skipped: the positive copy wins.
func (l *documentLoader) addNegative(_ profile.Profile, doc *document.Document) {
	if l.layerExists(doc.Layer.Name()) {
		return
	}
	l.negative = append(l.negative, doc.Layer)
}

func (l *documentLoader) layerExists(name string) bool {
	for _, layers := range l.buckets {
		for _, layer := range layers {
			if layer.Name() == name {
				return true
			}
		}
	}
	for _, layer := range l.negative {
		if layer.Name() == name {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func containsProfileName(profiles []profile.Profile, name string) bool {
	for _, p := range profiles {
		if p.Name() == name {
			return true
		}
	}
	return false
}

func profileNames(profiles []profile.Profile) []string {
	out := make([]string, len(profiles))
	for i, p := range profiles {
		out[i] = p.Name()
	}
	return out
}

func reversed(list []string) []string {
	out := make([]string, len(list))
	for i, item := range list {
		out[len(list)-1-i] = item
	}
	return out
}
