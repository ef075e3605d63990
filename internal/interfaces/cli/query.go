package cli

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/ReviewPulse/internal/application/analytics"
	"github.com/turtacn/ReviewPulse/internal/bootstrap"
	"github.com/turtacn/ReviewPulse/pkg/errors"
)

type queryOptions struct {
	file         string
	entities     []string
	merges       []string
	competitors  string
	percent      float64
	rating       float64
	topic        string
	detailEntity string
	from         string
	to           string
	search       string
	below        int
	between      string
	validateOnly bool
}

// NewQueryCmd creates the query command.
func NewQueryCmd() *cobra.Command {
	return newQueryCmd(&queryOptions{})
}

func newQueryCmd(opts *queryOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Compute the dashboard for a group selection",
		Long: "Compute the dashboard views for the selected groups.  Groups are given with\n" +
			"--entity, --merge and --competitors, or as a JSON query document with --file.",
		Example: `  reviewpulse query --entity "Filiale Nord" --competitors "Filiale Süd,Filiale West"
  reviewpulse query --merge "Selection A=Filiale Nord,Filiale Süd" --topic Service --below 3 -o markdown
  reviewpulse query --file query.json -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := buildQuery(cmd, opts)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, cc *CLIContext, app *bootstrap.App) error {
				return runQuery(ctx, cmd, cc, app.Service, q, opts.validateOnly)
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "JSON query document (- reads stdin); selection flags are ignored")
	f.StringArrayVar(&opts.entities, "entity", nil, "report one entity under its own name (repeatable)")
	f.StringArrayVar(&opts.merges, "merge", nil, `merge entities under a label, "Label=A,B" (repeatable)`)
	f.StringVar(&opts.competitors, "competitors", "", "comma separated entities reported one group each")
	f.Float64Var(&opts.percent, "percent-threshold", 0, "share highlight threshold in percentage points (0..30)")
	f.Float64Var(&opts.rating, "rating-threshold", 0, "rating highlight threshold in stars (0.1..1.5)")
	f.StringVar(&opts.topic, "topic", "", "list reviews flagged with this topic")
	f.StringVar(&opts.detailEntity, "detail-entity", "", "restrict the review listing to one entity")
	f.StringVar(&opts.from, "from", "", "first review date, YYYY-MM-DD")
	f.StringVar(&opts.to, "to", "", "last review date, YYYY-MM-DD")
	f.StringVar(&opts.search, "search", "", "case-insensitive text the review must contain")
	f.IntVar(&opts.below, "below", 0, "list reviews rated below this value (2..6)")
	f.StringVar(&opts.between, "between", "", `list reviews rated within "lower-upper"`)
	f.BoolVar(&opts.validateOnly, "validate-only", false, "check the query without computing")
	cmd.MarkFlagsMutuallyExclusive("below", "between")

	return cmd
}

func runQuery(ctx context.Context, cmd *cobra.Command, cc *CLIContext, svc analytics.Service, q analytics.Query, validateOnly bool) error {
	if validateOnly {
		if err := svc.Validate(ctx, q); err != nil {
			return err
		}
		PrintSuccess(cmd, "query is valid")
		return nil
	}
	res, err := svc.Query(ctx, q)
	if err != nil {
		return err
	}
	return Render(cmd.OutOrStdout(), cc.OutputFormat, res)
}

// buildQuery reads the query document or assembles it from flags.  Threshold
// and detail flags apply on top of a document as well.
func buildQuery(cmd *cobra.Command, opts *queryOptions) (analytics.Query, error) {
	var q analytics.Query
	if opts.file != "" {
		data, err := readQueryFile(cmd, opts.file)
		if err != nil {
			return q, err
		}
		if q, err = analytics.DecodeQuery(data); err != nil {
			return q, err
		}
	} else {
		groups, err := selectionsFromFlags(opts.entities, opts.merges, opts.competitors)
		if err != nil {
			return q, err
		}
		q.Groups = groups
	}

	flags := cmd.Flags()
	if flags.Changed("percent-threshold") {
		v := opts.percent
		q.PercentThreshold = &v
	}
	if flags.Changed("rating-threshold") {
		v := opts.rating
		q.RatingThreshold = &v
	}

	detailSet := false
	for _, name := range []string{"topic", "detail-entity", "from", "to", "search", "below", "between"} {
		if flags.Changed(name) {
			detailSet = true
			break
		}
	}
	if !detailSet {
		return q, nil
	}
	if q.Detail == nil {
		q.Detail = &analytics.DetailQuery{}
	}
	d := q.Detail
	if flags.Changed("topic") {
		d.Topic = opts.topic
	}
	if flags.Changed("detail-entity") {
		d.Entity = opts.detailEntity
	}
	if flags.Changed("from") {
		d.From = opts.from
	}
	if flags.Changed("to") {
		d.To = opts.to
	}
	if flags.Changed("search") {
		d.Search = opts.search
	}
	if flags.Changed("below") {
		d.RatingBound = &analytics.RatingBound{Mode: analytics.BoundBelow, Upper: opts.below}
	}
	if flags.Changed("between") {
		b, err := parseBetween(opts.between)
		if err != nil {
			return q, err
		}
		d.RatingBound = &b
	}
	return q, nil
}

func readQueryFile(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.InvalidParam("cannot read query file").WithDetail(err.Error())
	}
	return data, nil
}

// selectionsFromFlags orders merge groups first, then single entities, then
// competitors, which is also the order the engine reports them in.
func selectionsFromFlags(entities, merges []string, competitors string) ([]analytics.GroupSelection, error) {
	var out []analytics.GroupSelection
	for _, m := range merges {
		label, list, ok := strings.Cut(m, "=")
		label = strings.TrimSpace(label)
		if !ok || label == "" {
			return nil, errors.InvalidParam(`--merge expects "Label=A,B"`).WithDetail(m)
		}
		out = append(out, analytics.GroupSelection{Kind: analytics.SelectionMerge, Label: label, Entities: splitList(list)})
	}
	for _, e := range entities {
		out = append(out, analytics.GroupSelection{Kind: analytics.SelectionEntity, Entities: []string{strings.TrimSpace(e)}})
	}
	if competitors != "" {
		out = append(out, analytics.GroupSelection{Kind: analytics.SelectionCompetitors, Entities: splitList(competitors)})
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseBetween parses "lower-upper".  Range checks are left to the engine.
func parseBetween(s string) (analytics.RatingBound, error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(s), "-")
	if ok {
		lower, err1 := strconv.Atoi(strings.TrimSpace(lo))
		upper, err2 := strconv.Atoi(strings.TrimSpace(hi))
		if err1 == nil && err2 == nil {
			return analytics.RatingBound{Mode: analytics.BoundBetween, Lower: lower, Upper: upper}, nil
		}
	}
	return analytics.RatingBound{}, errors.InvalidParam(`--between expects "lower-upper"`).WithDetail(s)
}

//Personal.AI order the ending
