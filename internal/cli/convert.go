package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gdivelog2uddf/pkg/errors"
	"github.com/matzehuels/gdivelog2uddf/pkg/export"
	"github.com/matzehuels/gdivelog2uddf/pkg/prefs"
	"github.com/matzehuels/gdivelog2uddf/pkg/xmltree"
)

// sourceFlags are shared by every command that reads a dive log.
type sourceFlags struct {
	input       string
	preferences string
	config      string
	noConfig    bool
	noCache     bool

	tripThreshold float64
	segmentSize   int
	separator     string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "file", "f", export.DefaultInput, "gdivelog log file (bzip2 or plain SQLite)")
	cmd.Flags().StringVar(&f.preferences, "preferences", defaultPreferencesPath(), "gdivelog binary preferences file")
	cmd.Flags().StringVar(&f.config, "config", "", "TOML config file (default: ~/.config/"+appName+"/config.toml)")
	cmd.Flags().BoolVar(&f.noConfig, "no-config", false, "ignore the config file")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "decompress to a temporary file instead of the cache")
	cmd.Flags().Float64Var(&f.tripThreshold, "trip-threshold", 0, "start a new trip after this many days on the surface (0: no trips)")
	cmd.Flags().IntVar(&f.segmentSize, "segment-size", 0, "split output after about this many dives (0: single document)")
	cmd.Flags().StringVar(&f.separator, "separator", "", "separator between site name fragments")
}

// settings collects the preference sources, passing only flags the user set.
func (f *sourceFlags) settings(cmd *cobra.Command) export.Settings {
	s := export.Settings{
		ConfigPath:      f.config,
		NoConfig:        f.noConfig,
		PreferencesPath: f.preferences,
	}
	if cmd.Flags().Changed("trip-threshold") {
		s.Overrides.TripThresholdDays = &f.tripThreshold
	}
	if cmd.Flags().Changed("segment-size") {
		s.Overrides.SegmentSize = &f.segmentSize
	}
	if cmd.Flags().Changed("separator") {
		s.Overrides.Separator = &f.separator
	}
	return s
}

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		src         sourceFlags
		output      string
		pretty      bool
		udcf        bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "convert [dive numbers...]",
		Short: "Export the dive log as UDDF",
		Long: `Export the dive log as UDDF 3.0.0, or as legacy UDCF with --udcf.

Without dive numbers every dive is exported. Output goes to stdout unless
--output is given; with --segment-size the output path is a template and
documents are written to <base>_001.<ext>, <base>_002.<ext>, ...`,
		Example: `  # Export everything to stdout
  gdivelog2uddf -f ~/gdivelog.glg -p > dives.uddf

  # Export dives 12 and 13 grouped into trips
  gdivelog2uddf convert --trip-threshold 3 -o trip.uddf 12 13

  # Split a large log into files of about 100 dives
  gdivelog2uddf convert --segment-size 100 -o export/dives.uddf`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			numbers, err := parseDiveNumbers(args)
			if err != nil {
				return err
			}

			settings := src.settings(cmd)
			if cmd.Flags().Changed("pretty") {
				settings.Overrides.Pretty = &pretty
			}
			if cmd.Flags().Changed("udcf") {
				format := prefs.FormatUDDF
				if udcf {
					format = prefs.FormatUDCF
				}
				settings.Overrides.Format = &format
			}
			p, err := export.LoadPreferences(settings)
			if err != nil {
				return err
			}
			logger.Debug("resolved preferences",
				"format", p.Format,
				"depth", string(rune(p.Units.Depth)),
				"separator", p.Separator,
				"trip_threshold", p.TripThreshold,
				"segment_size", p.SegmentSize)

			opts := export.Options{
				Input:   src.input,
				Output:  output,
				Numbers: numbers,
				Prefs:   p,
			}
			// Fail on configuration errors before opening anything.
			if err := opts.Validate(); err != nil {
				return err
			}

			runner, err := c.newRunner(src.noCache)
			if err != nil {
				return err
			}
			defer runner.Cache.Close()

			if interactive {
				picked, err := pickDives(ctx, runner, opts)
				if err != nil {
					return err
				}
				if len(picked) == 0 {
					printInfo("No dives selected")
					return nil
				}
				opts.Numbers = picked
			}

			if opts.ToStdout() {
				_, err := runner.Execute(ctx, opts)
				return err
			}
			return runToFiles(cmd, runner, opts)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "indent the XML output")
	cmd.Flags().BoolVar(&udcf, "udcf", false, "write legacy UDCF instead of UDDF")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick dives interactively")

	return cmd
}

// runToFiles executes with a spinner and reports each written file.
func runToFiles(cmd *cobra.Command, runner *export.Runner, opts export.Options) error {
	ctx := cmd.Context()
	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Converting %s...", opts.Input))

	var files []string
	opts.OnDocument = func(doc *xmltree.Document, path string) {
		files = append(files, path)
		spinner.SetMessage(fmt.Sprintf("Converting %s... %d document(s) written", opts.Input, doc.Seq))
	}

	spinner.Start()
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
		} else {
			spinner.StopWithError("Conversion failed")
		}
		return err
	}

	spinner.StopWithSuccess(fmt.Sprintf("Exported %d dives in %d document(s)", res.Stats.Dives, res.Stats.Documents))
	for _, f := range files {
		printFile(f)
	}
	printStats(res.Stats)
	prog.done("Conversion finished")
	return nil
}

// parseDiveNumbers converts positional arguments to dive numbers.
func parseDiveNumbers(args []string) ([]int64, error) {
	var out []int64
	for _, a := range args {
		n, err := strconv.ParseInt(a, 10, 64)
		if err != nil || n <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid dive number %q", a)
		}
		out = append(out, n)
	}
	return out, nil
}
