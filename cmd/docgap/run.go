package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"docgap/internal/cargo"
	"docgap/internal/config"
	"docgap/internal/diag"
	"docgap/internal/diagfmt"
	"docgap/internal/filter"
	"docgap/internal/itemkind"
	"docgap/internal/observ"
	"docgap/internal/report"
	"docgap/internal/snapshot"
	"docgap/internal/trace"
	"docgap/internal/version"
)

// targetFlags maps the boolean target flags to their kind.
var targetFlags = []struct {
	name string
	kind cargo.TargetKind
	help string
}{
	{"lib", cargo.TargetLib, "check only this package's library"},
	{"bins", cargo.TargetBins, "check all binaries"},
	{"examples", cargo.TargetExamples, "check all examples"},
	{"tests", cargo.TargetTests, "check all tests"},
	{"benches", cargo.TargetBenches, "check all benches"},
	{"all-targets", cargo.TargetAll, "check all targets"},
}

// namedTargetFlags are target flags that take a name.
var namedTargetFlags = []struct {
	name string
	kind cargo.TargetKind
	help string
}{
	{"bin", cargo.TargetBin, "check only the specified binary"},
	{"example", cargo.TargetExample, "check only the specified example"},
	{"test", cargo.TargetTest, "check only the specified test target"},
	{"bench", cargo.TargetBench, "check only the specified bench target"},
}

func registerReportFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("manifest-path", ".", "path to Cargo.toml or a directory inside the package")
	flags.Bool("nightly", false, "run clippy through the nightly toolchain")
	flags.Bool("error", false, "also report public functions missing an '# Errors' section")
	flags.Bool("panic", false, "also report public functions missing a '# Panics' section")
	flags.Bool("safety", false, "also report unsafe functions missing a '# Safety' section")
	flags.BoolP("all", "a", false, "enable --error, --panic and --safety")

	targets := make([]string, 0, len(targetFlags)+len(namedTargetFlags))
	for _, tf := range targetFlags {
		flags.Bool(tf.name, false, tf.help)
		targets = append(targets, tf.name)
	}
	for _, tf := range namedTargetFlags {
		flags.String(tf.name, "", tf.help)
		targets = append(targets, tf.name)
	}
	cmd.MarkFlagsMutuallyExclusive(targets...)

	flags.StringP("features", "F", "", "space or comma separated list of features to activate")
	flags.Bool("all-features", false, "activate all available features")
	flags.Bool("no-default-features", false, "do not activate the default feature")
	cmd.MarkFlagsMutuallyExclusive("features", "all-features", "no-default-features")

	flags.BoolP("show-item", "s", false, "print the highlighted source of every item")
	flags.BoolP("compact", "c", false, "shorten messages to the item kind")

	flags.Bool("ignore-config", false, "use the built-in theme and never touch the config file")
	flags.Bool("print-default-config", false, "print the default configuration and exit")
	flags.Bool("print-config-path", false, "print the configuration path and exit")

	flags.StringArrayP("filter", "f", nil, "only report files matching the glob (repeatable)")
	flags.StringSliceP("include", "i", nil, "only report these item kinds ("+strings.Join(itemkind.Keys(), ", ")+")")
	flags.StringSliceP("exclude", "e", nil, "do not report these item kinds")
	cmd.MarkFlagsMutuallyExclusive("include", "exclude")

	flags.String("format", "pretty", "output format (pretty|short|json|sarif)")
	flags.String("path-mode", "relative", "how file paths are printed (relative|absolute|basename)")
	flags.Int("max", 0, "maximum entries in json output (0 = no limit)")
	flags.String("ui", "auto", "progress UI (auto|on|off)")
	flags.String("input", "", "read a recorded cargo JSON stream instead of running cargo ('-' for stdin)")
	flags.String("save-snapshot", "", "write the report to a msgpack snapshot")
	flags.String("from-snapshot", "", "render a saved snapshot instead of running cargo")
	cmd.MarkFlagsMutuallyExclusive("input", "from-snapshot")
}

// runReport is the root command: build the report, then render it.
func runReport(cmd *cobra.Command, args []string) error {
	tracer, cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	printPath, err := cmd.Flags().GetBool("print-config-path")
	if err != nil {
		return fmt.Errorf("failed to get print-config-path flag: %w", err)
	}
	printDefault, err := cmd.Flags().GetBool("print-default-config")
	if err != nil {
		return fmt.Errorf("failed to get print-default-config flag: %w", err)
	}
	if printPath || printDefault {
		return printConfigInfo(stdout, printPath, printDefault)
	}

	opts, err := readReportOptions(cmd)
	if err != nil {
		return err
	}

	// цветовой режим распространяется и на fatih/color
	switch opts.color {
	case diagfmt.ColorOn:
		color.NoColor = false
	case diagfmt.ColorOff:
		color.NoColor = true
	}

	cfg, done, err := loadConfig(opts.ignoreConfig, stderr)
	if err != nil || done {
		return err
	}

	timer := observ.NewTimer()
	ctx, run := trace.StartSpan(cmd.Context(), trace.ScopeDriver, "docgap")
	defer run.End("")
	cmd.SetContext(ctx)

	idx, root, err := buildIndex(cmd, opts, tracer, timer)
	if err != nil {
		return err
	}

	if opts.saveSnapshot != "" {
		err = timer.Measure("snapshot", func() error {
			return snapshot.Save(opts.saveSnapshot, idx, snapshot.Meta{
				Manifest: opts.manifestForMeta,
				Created:  time.Now().UTC(),
			})
		})
		if err != nil {
			return err
		}
	}

	err = timer.Measure("render", func() error {
		return render(stdout, idx, cfg, opts, root)
	})
	if err != nil {
		return err
	}

	if opts.timings {
		fmt.Fprint(stderr, timer.Summary())
	}
	return nil
}

type reportOptions struct {
	manifestPath string
	command      cargo.Command
	filters      []string
	include      []itemkind.Kind
	exclude      []itemkind.Kind

	format   string
	pathMode diagfmt.PathMode
	max      int
	color    diagfmt.ColorMode
	ui       autoSwitch
	showItem bool
	compact  bool
	timings  bool

	ignoreConfig bool
	input        string
	saveSnapshot string
	fromSnapshot string

	// manifestForMeta is filled once the manifest is known.
	manifestForMeta string
}

func readReportOptions(cmd *cobra.Command) (*reportOptions, error) {
	flags := cmd.Flags()
	opts := &reportOptions{}
	var err error

	if opts.manifestPath, err = flags.GetString("manifest-path"); err != nil {
		return nil, fmt.Errorf("failed to get manifest-path flag: %w", err)
	}
	if opts.command.Nightly, err = flags.GetBool("nightly"); err != nil {
		return nil, fmt.Errorf("failed to get nightly flag: %w", err)
	}
	if opts.command.Errors, err = flags.GetBool("error"); err != nil {
		return nil, fmt.Errorf("failed to get error flag: %w", err)
	}
	if opts.command.Panics, err = flags.GetBool("panic"); err != nil {
		return nil, fmt.Errorf("failed to get panic flag: %w", err)
	}
	if opts.command.Safety, err = flags.GetBool("safety"); err != nil {
		return nil, fmt.Errorf("failed to get safety flag: %w", err)
	}
	all, err := flags.GetBool("all")
	if err != nil {
		return nil, fmt.Errorf("failed to get all flag: %w", err)
	}
	if all {
		opts.command.Errors = true
		opts.command.Panics = true
		opts.command.Safety = true
	}

	if opts.command.Target, err = readTarget(cmd); err != nil {
		return nil, err
	}
	if opts.command.Features, err = readFeatures(cmd); err != nil {
		return nil, err
	}

	if opts.showItem, err = flags.GetBool("show-item"); err != nil {
		return nil, fmt.Errorf("failed to get show-item flag: %w", err)
	}
	if opts.compact, err = flags.GetBool("compact"); err != nil {
		return nil, fmt.Errorf("failed to get compact flag: %w", err)
	}
	if opts.ignoreConfig, err = flags.GetBool("ignore-config"); err != nil {
		return nil, fmt.Errorf("failed to get ignore-config flag: %w", err)
	}

	if opts.filters, err = flags.GetStringArray("filter"); err != nil {
		return nil, fmt.Errorf("failed to get filter flag: %w", err)
	}
	includeKeys, err := flags.GetStringSlice("include")
	if err != nil {
		return nil, fmt.Errorf("failed to get include flag: %w", err)
	}
	if opts.include, err = parseKinds(includeKeys); err != nil {
		return nil, fmt.Errorf("invalid --include: %w", err)
	}
	excludeKeys, err := flags.GetStringSlice("exclude")
	if err != nil {
		return nil, fmt.Errorf("failed to get exclude flag: %w", err)
	}
	if opts.exclude, err = parseKinds(excludeKeys); err != nil {
		return nil, fmt.Errorf("invalid --exclude: %w", err)
	}

	if opts.format, err = flags.GetString("format"); err != nil {
		return nil, fmt.Errorf("failed to get format flag: %w", err)
	}
	opts.format = strings.ToLower(opts.format)
	switch opts.format {
	case "pretty", "short", "json", "sarif":
	default:
		return nil, fmt.Errorf("unsupported format %q (must be pretty, short, json or sarif)", opts.format)
	}

	pathMode, err := flags.GetString("path-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	var ok bool
	if opts.pathMode, ok = diagfmt.ParsePathMode(pathMode); !ok {
		return nil, fmt.Errorf("invalid --path-mode value %q (expected relative|absolute|basename)", pathMode)
	}
	if opts.max, err = flags.GetInt("max"); err != nil {
		return nil, fmt.Errorf("failed to get max flag: %w", err)
	}

	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	if opts.color, ok = diagfmt.ParseColorMode(colorFlag); !ok {
		return nil, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}
	if opts.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}

	uiValue, err := flags.GetString("ui")
	if err != nil {
		return nil, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if opts.ui, err = parseAutoSwitch("ui", uiValue); err != nil {
		return nil, err
	}

	if opts.input, err = flags.GetString("input"); err != nil {
		return nil, fmt.Errorf("failed to get input flag: %w", err)
	}
	if opts.saveSnapshot, err = flags.GetString("save-snapshot"); err != nil {
		return nil, fmt.Errorf("failed to get save-snapshot flag: %w", err)
	}
	if opts.fromSnapshot, err = flags.GetString("from-snapshot"); err != nil {
		return nil, fmt.Errorf("failed to get from-snapshot flag: %w", err)
	}
	if opts.fromSnapshot != "" && (len(opts.filters) > 0 || len(opts.include) > 0 || len(opts.exclude) > 0) {
		return nil, errors.New("--filter, --include and --exclude cannot be used with --from-snapshot")
	}
	return opts, nil
}

func readTarget(cmd *cobra.Command) (cargo.Target, error) {
	for _, tf := range targetFlags {
		set, err := cmd.Flags().GetBool(tf.name)
		if err != nil {
			return cargo.Target{}, fmt.Errorf("failed to get %s flag: %w", tf.name, err)
		}
		if set {
			return cargo.Target{Kind: tf.kind}, nil
		}
	}
	for _, tf := range namedTargetFlags {
		name, err := cmd.Flags().GetString(tf.name)
		if err != nil {
			return cargo.Target{}, fmt.Errorf("failed to get %s flag: %w", tf.name, err)
		}
		if cmd.Flags().Changed(tf.name) {
			if name == "" {
				return cargo.Target{}, fmt.Errorf("--%s requires a name", tf.name)
			}
			return cargo.Target{Kind: tf.kind, Name: name}, nil
		}
	}
	return cargo.Target{}, nil
}

func readFeatures(cmd *cobra.Command) (cargo.Features, error) {
	var f cargo.Features
	list, err := cmd.Flags().GetString("features")
	if err != nil {
		return f, fmt.Errorf("failed to get features flag: %w", err)
	}
	f.List = splitFeatures(list)
	if f.All, err = cmd.Flags().GetBool("all-features"); err != nil {
		return f, fmt.Errorf("failed to get all-features flag: %w", err)
	}
	if f.NoDefault, err = cmd.Flags().GetBool("no-default-features"); err != nil {
		return f, fmt.Errorf("failed to get no-default-features flag: %w", err)
	}
	return f, nil
}

// splitFeatures accepts the same separators as cargo: commas and spaces.
func splitFeatures(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func parseKinds(keys []string) ([]itemkind.Kind, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	kinds := make([]itemkind.Kind, 0, len(keys))
	for _, key := range keys {
		k, err := itemkind.ParseKey(strings.TrimSpace(key))
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func printConfigInfo(w io.Writer, printPath, printDefault bool) error {
	if printPath {
		path, err := config.Path()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, path)
	}
	if printDefault {
		fmt.Fprint(w, config.Default)
	}
	return nil
}

// loadConfig returns the theme config. done is set when the default file was
// just created and the run should stop there.
func loadConfig(ignore bool, stderr io.Writer) (cfg *config.Config, done bool, err error) {
	if ignore {
		return config.Builtin(), false, nil
	}
	path, created, err := config.Initial(false, stderr)
	if err != nil {
		return nil, false, err
	}
	if created {
		return nil, true, nil
	}
	cfg, err = config.Load(path)
	if err != nil {
		return nil, false, err
	}
	return cfg, false, nil
}

// buildIndex produces the report from a snapshot, a recorded stream or a
// fresh clippy run. root is the package directory used for path display.
func buildIndex(cmd *cobra.Command, opts *reportOptions, tracer trace.Tracer, timer *observ.Timer) (*report.Index, string, error) {
	if opts.fromSnapshot != "" {
		var (
			idx  *report.Index
			meta snapshot.Meta
		)
		err := timer.Measure("snapshot", func() error {
			var loadErr error
			idx, meta, loadErr = snapshot.Load(opts.fromSnapshot)
			return loadErr
		})
		if err != nil {
			return nil, "", err
		}
		opts.manifestForMeta = meta.Manifest
		root := ""
		if meta.Manifest != "" {
			root = filepath.Dir(meta.Manifest)
		}
		return idx, root, nil
	}

	var tree *diag.Tree
	var root string
	if opts.input != "" {
		root, opts.manifestForMeta = inputRoot(opts.manifestPath)
		err := timer.Measure("decode", func() error {
			var readErr error
			tree, readErr = readInput(cmd, opts.input)
			return readErr
		})
		if err != nil {
			return nil, "", err
		}
	} else {
		manifest, err := cargo.LocateManifest(opts.manifestPath)
		if err != nil {
			return nil, "", err
		}
		opts.manifestForMeta = manifest
		opts.command.Manifest = manifest
		root = filepath.Dir(manifest)

		runner := &cargo.Runner{}
		err = timer.Measure("clippy", func() error {
			var res *cargo.Result
			var runErr error
			// спиннер рисуется в stderr
			if opts.ui.resolve(os.Stderr) {
				res, runErr = runCargoWithUI(cmd.Context(), "docgap "+filepath.Base(root), runner, &opts.command)
			} else {
				res, runErr = runner.Run(cmd.Context(), &opts.command)
			}
			if runErr != nil {
				return runErr
			}
			tree = res.Tree
			return nil
		})
		if err != nil {
			return nil, "", err
		}
	}

	var paths []string
	if len(opts.filters) > 0 {
		err := timer.Measure("glob", func() error {
			var globErr error
			paths, globErr = cargo.GlobFilters(root, opts.filters)
			if globErr != nil {
				return globErr
			}
			if len(paths) == 0 {
				return fmt.Errorf("no file matches --filter %s", strings.Join(opts.filters, ", "))
			}
			return nil
		})
		if err != nil {
			return nil, "", err
		}
	}

	var idx *report.Index
	err := timer.Measure("aggregate", func() error {
		var walkErr error
		idx, walkErr = report.Walk(tree, report.Options{
			Filter: filter.New(opts.include, opts.exclude, paths),
			Tracer: tracer,
		})
		return walkErr
	})
	if err != nil {
		return nil, "", err
	}
	return idx, root, nil
}

// inputRoot picks the directory for globs when no cargo run happens: the
// package of --manifest-path when there is one, otherwise the path itself.
func inputRoot(manifestPath string) (root, manifest string) {
	if m, err := cargo.LocateManifest(manifestPath); err == nil {
		return filepath.Dir(m), m
	}
	if info, err := os.Stat(manifestPath); err == nil && !info.IsDir() {
		return filepath.Dir(manifestPath), ""
	}
	return manifestPath, ""
}

func readInput(cmd *cobra.Command, input string) (*diag.Tree, error) {
	if input == "-" {
		return diag.ReadTree(cmd.InOrStdin())
	}
	f, err := os.Open(input)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()
	tree, err := diag.ReadTree(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}
	return tree, nil
}

func render(w io.Writer, idx *report.Index, cfg *config.Config, opts *reportOptions, root string) error {
	switch opts.format {
	case "json":
		return diagfmt.JSON(w, idx, diagfmt.JSONOpts{
			Compact:           opts.compact,
			IncludeHighlights: opts.showItem,
			PathMode:          opts.pathMode,
			Root:              root,
			Max:               opts.max,
		})
	case "sarif":
		return diagfmt.Sarif(w, idx, diagfmt.JSONOpts{
			Compact:           opts.compact,
			IncludeHighlights: opts.showItem,
			PathMode:          opts.pathMode,
			Root:              root,
			Max:               opts.max,
		}, diagfmt.SarifRunMeta{
			ToolName:    "docgap",
			ToolVersion: version.Current().Version,
		})
	case "short":
		return diagfmt.Short(w, idx, diagfmt.ShortOpts{
			Compact:  opts.compact,
			PathMode: opts.pathMode,
			Root:     root,
		})
	default:
		var theme *config.Theme
		if cfg != nil {
			theme = &cfg.Theme
		}
		return diagfmt.Pretty(w, idx, diagfmt.NewTheme(w, theme, opts.color), diagfmt.PrettyOpts{
			Compact:  opts.compact,
			ShowItem: opts.showItem,
			PathMode: opts.pathMode,
			Root:     root,
		})
	}
}
