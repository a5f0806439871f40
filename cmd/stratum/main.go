package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/stratumcfg/stratum"
	"github.com/stratumcfg/stratum/pkg/document"
	"github.com/stratumcfg/stratum/pkg/environment"
	"github.com/stratumcfg/stratum/pkg/logger"
	"github.com/stratumcfg/stratum/pkg/manifest"
	"github.com/stratumcfg/stratum/pkg/property"
	"github.com/stratumcfg/stratum/pkg/resource"
)

var version = "0.1.0"

// toolSettings are the CLI's own knobs, bound to flags and STRATUM_* env
// variables via viper. They configure the tool, not the resolved output.
type toolSettings struct {
	LogLevel           string
	Profiles           []string
	ConfigName         string
	Locations          []string
	AdditionalLocation []string
	Manifest           string
	Metadata           string
	Category           string
	Exclude            []string
}

func main() {
	// Pick up a local .env if present before anything reads the environment.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("STRATUM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "stratum",
		Short: "Stratum - layered configuration resolver",
		Long: `Stratum resolves layered configuration: profile-scoped documents from a set
of search locations merged into one deterministic property view, plus an
ordered list of conditional contributions discovered from a manifest.`,
	}

	flags := root.PersistentFlags()
	flags.String("log-level", "error", "Log level (debug, info, warn, error)")
	flags.StringSlice("profiles", nil, "Profiles to activate")
	flags.String("config-name", "", "Base filename to search for (default: application)")
	flags.StringSlice("config-location", nil, "Search locations replacing the defaults")
	flags.StringSlice("additional-location", nil, "Search locations that win over the defaults")
	flags.String("manifest", "", "Contribution discovery manifest (YAML)")
	flags.String("metadata", "", "Contribution metadata sidecar (properties)")
	flags.String("category", "", "Contribution category to resolve")
	flags.StringSlice("exclude", nil, "Contribution identifiers to exclude")
	if err := v.BindPFlags(flags); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Stratum v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "loaders",
		Short: "List registered document loaders",
		Run: func(cmd *cobra.Command, args []string) {
			for _, l := range document.DefaultLoaders() {
				fmt.Printf("  - %s (.%s)\n", l.Name(), strings.Join(l.Extensions(), ", ."))
			}
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "resolve",
		Short: "Run a resolution pass and print the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := readSettings(v)
			result, _, err := runResolve(settings)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Resolve configuration and print the value of one key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := readSettings(v)
			_, env, err := runResolve(settings)
			if err != nil {
				return err
			}
			value, ok := env.GetProperty(args[0])
			if !ok {
				return fmt.Errorf("key %q not found", args[0])
			}
			fmt.Println(value)
			return nil
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readSettings(v *viper.Viper) toolSettings {
	return toolSettings{
		LogLevel:           v.GetString("log-level"),
		Profiles:           v.GetStringSlice("profiles"),
		ConfigName:         v.GetString("config-name"),
		Locations:          v.GetStringSlice("config-location"),
		AdditionalLocation: v.GetStringSlice("additional-location"),
		Manifest:           v.GetString("manifest"),
		Metadata:           v.GetString("metadata"),
		Category:           v.GetString("category"),
		Exclude:            v.GetStringSlice("exclude"),
	}
}

// resolveResult is the JSON shape printed by the resolve command.
type resolveResult struct {
	Profiles      []string          `json:"profiles"`
	Contributions []string          `json:"contributions"`
	Exclusions    []string          `json:"exclusions"`
	Layers        []string          `json:"layers"`
	Properties    map[string]string `json:"properties"`
	Fingerprint   string            `json:"fingerprint"`
}

func runResolve(settings toolSettings) (*resolveResult, *environment.Environment, error) {
	if err := logger.Init(logger.Config{Level: settings.LogLevel}); err != nil {
		return nil, nil, err
	}
	log := logger.Get()

	env := environment.New()
	seedEnvironment(env, settings)

	resources := resource.NewLoader(afero.NewMemMapFs())
	registry := manifest.NewRegistry()
	metadata := manifest.NewMetadata(nil)

	opts := stratum.DefaultOptions(settings.Category)
	if settings.Category == "" {
		// Documents only; there is nothing to discover contributions for.
		opts.Enabled = false
	} else {
		manifestLocation := settings.Manifest
		if manifestLocation == "" {
			manifestLocation = "stratum-manifest.yaml"
		}
		if err := registry.LoadManifest(resources.Get(manifestLocation)); err != nil {
			return nil, nil, err
		}
		if settings.Metadata != "" {
			m, err := manifest.LoadMetadata(resources.Get(settings.Metadata))
			if err != nil {
				return nil, nil, err
			}
			metadata = m
		}
	}
	opts.Exclude = settings.Exclude
	opts.Listeners = []stratum.Listener{stratum.MetricsListener{}}

	cfg, err := stratum.Resolve(stratum.Context{
		Environment: env,
		Resources:   resources,
		Registry:    registry,
		Metadata:    metadata,
		Logger:      log,
	}, opts)
	if err != nil {
		return nil, nil, err
	}

	log.Debug("resolution finished",
		zap.Strings("profiles", cfg.Profiles),
		zap.Int("layers", cfg.PropertySources().Len()))
	return &resolveResult{
		Profiles:      cfg.Profiles,
		Contributions: cfg.Contributions,
		Exclusions:    cfg.Exclusions,
		Layers:        cfg.PropertySources().Names(),
		Properties:    flatten(env, cfg.PropertySources()),
		Fingerprint:   cfg.Fingerprint(),
	}, env, nil
}

// seedEnvironment installs the CLI's overrides as the highest-precedence
// layer so they win over anything loaded from files.
func seedEnvironment(env *environment.Environment, settings toolSettings) {
	layer := property.NewLayer("commandLine")
	if len(settings.Profiles) > 0 {
		layer.Set(environment.ActiveProfilesProperty, strings.Join(settings.Profiles, ","))
	}
	if settings.ConfigName != "" {
		layer.Set(stratum.ConfigNameProperty, settings.ConfigName)
	}
	if len(settings.Locations) > 0 {
		layer.Set(stratum.ConfigLocationProperty, strings.Join(settings.Locations, ","))
	}
	if len(settings.AdditionalLocation) > 0 {
		layer.Set(stratum.ConfigAdditionalLocationProperty, strings.Join(settings.AdditionalLocation, ","))
	}
	if layer.Len() > 0 {
		// The stack is empty at this point, so AddLast cannot fail.
		_ = env.PropertySources().AddLast(layer)
	}
}

// flatten renders the resolved view: every key from every layer, resolved
// through the full stack so precedence and placeholders apply.
func flatten(env *environment.Environment, stack *property.Stack) map[string]string {
	out := make(map[string]string)
	for _, layer := range stack.Layers() {
		for _, key := range layer.Keys() {
			if _, done := out[key]; done {
				continue
			}
			if v, ok := env.GetProperty(key); ok {
				out[key] = v
			}
		}
	}
	return out
}
