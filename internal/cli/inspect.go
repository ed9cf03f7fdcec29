package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gdivelog2uddf/pkg/errors"
	"github.com/matzehuels/gdivelog2uddf/pkg/export"
	"github.com/matzehuels/gdivelog2uddf/pkg/outline"
	"github.com/matzehuels/gdivelog2uddf/pkg/segment"
	"github.com/matzehuels/gdivelog2uddf/pkg/units"
)

// Inspect output formats.
const (
	inspectTable = "table"
	inspectDOT   = "dot"
	inspectSVG   = "svg"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		src      sourceFlags
		format   string
		output   string
		dives    bool
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [dive numbers...]",
		Short: "Show how dives are grouped and split without exporting",
		Long: `Show the repetition groups, trips and output documents a conversion
with the same settings would produce.

Formats:
  table  documents (and with --dives every dive) as a table
  dot    Graphviz DOT source
  svg    the DOT graph rendered with Graphviz`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			numbers, err := parseDiveNumbers(args)
			if err != nil {
				return err
			}
			p, err := export.LoadPreferences(src.settings(cmd))
			if err != nil {
				return err
			}

			runner, err := c.newRunner(src.noCache)
			if err != nil {
				return err
			}
			defer runner.Cache.Close()

			docs, stats, err := runner.Plan(ctx, export.Options{Input: src.input, Numbers: numbers, Prefs: p})
			if err != nil {
				return err
			}

			switch format {
			case inspectTable:
				printDocuments(os.Stdout, docs, stats)
				if dives {
					fmt.Println()
					printDives(os.Stdout, docs, p.Units)
				}
				return nil
			case inspectDOT:
				return writeOutput(output, []byte(outline.ToDOT(docs, outline.Options{Detailed: detailed})))
			case inspectSVG:
				svg, err := outline.RenderSVG(ctx, outline.ToDOT(docs, outline.Options{Detailed: detailed}))
				if err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "render outline")
				}
				return writeOutput(output, svg)
			default:
				return errors.New(errors.ErrCodeInvalidInput,
					"unknown format %q (want %s, %s or %s)", format, inspectTable, inspectDOT, inspectSVG)
			}
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&format, "format", inspectTable, "output format: table, dot or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write dot/svg output to a file (default: stdout)")
	cmd.Flags().BoolVar(&dives, "dives", false, "list every dive (table format)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include start times in graph labels")

	return cmd
}

// printDocuments renders one row per planned document followed by totals.
func printDocuments(w io.Writer, docs []*outline.Document, stats segment.Stats) {
	rows := make([][]string, 0, len(docs))
	for _, doc := range docs {
		first, ok := doc.First()
		last, _ := doc.Last()
		span, from, to := "-", "-", "-"
		if ok {
			span = fmt.Sprintf("#%d – #%d", first.Number, last.Number)
			from = first.Start.Format("2006-01-02")
			to = last.Start.Format("2006-01-02")
		}
		rows = append(rows, []string{
			strconv.Itoa(doc.Seq),
			strconv.Itoa(doc.Dives()),
			span,
			strconv.Itoa(len(doc.Groups)),
			strconv.Itoa(len(doc.Trips)),
			from,
			to,
		})
	}

	fmt.Fprintln(w, renderTable([]string{"Doc", "Dives", "Numbers", "Groups", "Trips", "From", "To"}, rows))
	fmt.Fprintf(w, "%s %s  %s %s  %s %s  %s %s\n",
		StyleNumber.Render(strconv.Itoa(stats.Dives)), StyleDim.Render("dives"),
		StyleNumber.Render(strconv.Itoa(stats.Groups)), StyleDim.Render("groups"),
		StyleNumber.Render(strconv.Itoa(stats.Trips)), StyleDim.Render("trips"),
		StyleNumber.Render(strconv.Itoa(stats.Documents)), StyleDim.Render("documents"))
}

// printDives renders one row per dive, with stored values shown in the
// configured units.
func printDives(w io.Writer, docs []*outline.Document, u units.System) {
	var rows [][]string
	for _, doc := range docs {
		for _, g := range doc.Groups {
			for _, d := range g.Dives {
				trip := "-"
				if d.Trip > 0 {
					trip = fmt.Sprintf("trip_%d", d.Trip)
				}
				rows = append(rows, []string{
					strconv.FormatInt(d.Number, 10),
					d.Start.Format("2006-01-02 15:04"),
					fmtSurfaceInterval(d),
					fmtQuantity(u.DisplayDepth(d.MaxDepth)),
					fmtOptional(d.MinTemp, u.DisplayTemperature),
					fmtOptional(d.Weight, u.DisplayWeight),
					fmt.Sprintf("rg_%d", g.ID),
					trip,
					strconv.Itoa(doc.Seq),
				})
			}
		}
	}
	fmt.Fprintln(w, renderTable([]string{"Dive", "Start", "Interval", "Depth", "Min temp", "Lead", "Group", "Trip", "Doc"}, rows))
}

func fmtQuantity(v float64, unit string) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + " " + unit
}

// fmtOptional shows "-" for values gdivelog leaves at zero when unrecorded.
func fmtOptional(v float64, display func(float64) (float64, string)) string {
	if v == 0 {
		return "-"
	}
	return fmtQuantity(display(v))
}

func renderTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "write %s", path)
	}
	printSuccess("Wrote %s", path)
	return nil
}
