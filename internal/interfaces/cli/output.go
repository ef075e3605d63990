package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/ReviewPulse/internal/application/analytics"
	"github.com/turtacn/ReviewPulse/pkg/errors"
)

// Output formats accepted by --output.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// textReviewWidth truncates review texts in the text listing.
const textReviewWidth = 60

func isKnownFormat(f string) bool {
	switch strings.ToLower(f) {
	case FormatText, FormatJSON, FormatYAML, FormatMarkdown, FormatHTML:
		return true
	}
	return false
}

// section is one titled block of a report: free lines and an optional table.
type section struct {
	title   string
	lines   []string
	headers []string
	rows    [][]string
}

// reporter is implemented by values with a tabular report form.
type reporter interface {
	sections() []section
}

// Render writes v to w in format.  Values without a report form fall back
// to YAML inside markdown and HTML, and to YAML for text.
func Render(w io.Writer, format string, v interface{}) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		return renderYAML(w, v)
	case FormatMarkdown:
		_, err := io.WriteString(w, toMarkdown(v))
		return err
	case FormatHTML:
		return renderHTML(w, toMarkdown(v))
	case FormatText, "":
		r, ok := asReporter(v)
		if !ok {
			return renderYAML(w, v)
		}
		_, err := io.WriteString(w, renderText(r.sections()))
		return err
	}
	return errors.InvalidParam("unknown output format").WithDetail(format)
}

func renderYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "yaml encoding failed")
	}
	return enc.Close()
}

func asReporter(v interface{}) (reporter, bool) {
	switch x := v.(type) {
	case *analytics.QueryResult:
		return queryReport{x}, true
	case analytics.Meta:
		return metaReport{x}, true
	case *analytics.Meta:
		return metaReport{*x}, true
	case reporter:
		return x, true
	}
	return nil, false
}

func renderText(secs []section) string {
	var sb strings.Builder
	for i, s := range secs {
		if i > 0 {
			sb.WriteString("\n")
		}
		if s.title != "" {
			sb.WriteString(s.title + "\n")
		}
		for _, l := range s.lines {
			sb.WriteString("  " + l + "\n")
		}
		if len(s.headers) > 0 {
			sb.WriteString(FormatTable(s.headers, s.rows))
		}
	}
	return sb.String()
}

func toMarkdown(v interface{}) string {
	r, ok := asReporter(v)
	if !ok {
		var buf bytes.Buffer
		if err := renderYAML(&buf, v); err != nil {
			return fmt.Sprintf("```\n%v\n```\n", v)
		}
		return "```yaml\n" + buf.String() + "```\n"
	}

	var sb strings.Builder
	for _, s := range r.sections() {
		if s.title != "" {
			sb.WriteString("## " + s.title + "\n\n")
		}
		for _, l := range s.lines {
			sb.WriteString("- " + l + "\n")
		}
		if len(s.lines) > 0 {
			sb.WriteString("\n")
		}
		if len(s.headers) > 0 {
			sb.WriteString(markdownTable(s.headers, s.rows))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func markdownTable(headers []string, rows [][]string) string {
	var sb strings.Builder
	sb.WriteString("| " + strings.Join(escapeCells(headers), " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat(" --- |", len(headers)) + "\n")
	for _, row := range rows {
		cells := make([]string, len(headers))
		copy(cells, row)
		sb.WriteString("| " + strings.Join(escapeCells(cells), " | ") + " |\n")
	}
	return sb.String()
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.ReplaceAll(c, "|", `\|`)
		out[i] = strings.ReplaceAll(c, "\n", " ")
	}
	return out
}

var markdownEngine = goldmark.New(goldmark.WithExtensions(extension.Table))

func renderHTML(w io.Writer, md string) error {
	var body bytes.Buffer
	if err := markdownEngine.Convert([]byte(md), &body); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "markdown conversion failed")
	}
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>ReviewPulse</title></head>\n<body>\n%s</body>\n</html>\n", body.String())
	return err
}

// ─────────────────────────────────────────────────────────────────────────────
// Report forms
// ─────────────────────────────────────────────────────────────────────────────

type queryReport struct{ r *analytics.QueryResult }

func (q queryReport) sections() []section {
	r := q.r
	summary := section{
		title: "Summary",
		lines: []string{
			"Average rating: " + r.Summary.AverageLabel + bandSuffix(r.Summary.Band),
			"Respondents: " + strconv.Itoa(r.Summary.Respondents),
			"Groups: " + strings.Join(r.Groups, ", "),
		},
	}
	if n := len(r.Quarters); n > 0 {
		summary.lines = append(summary.lines, "Quarters: "+r.Quarters[0]+" .. "+r.Quarters[n-1])
	}

	secs := []section{
		summary,
		groupSection(r.PerGroup),
		trendSection(r),
		topicSection(fmt.Sprintf("Topic shares in %% (threshold %g)", r.TopicShares.Threshold), r.TopicShares),
		topicSection(fmt.Sprintf("Topic ratings (threshold %g)", r.TopicRatings.Threshold), r.TopicRatings),
		distributionSection(r.Ratings),
	}
	if r.Reviews.Topic != "" {
		secs = append(secs, reviewSection(r.Reviews))
	}
	return secs
}

func bandSuffix(b analytics.Band) string {
	if b == "" {
		return ""
	}
	return " (" + string(b) + ")"
}

func groupSection(groups []analytics.GroupSummary) section {
	s := section{title: "Groups", headers: []string{"Group", "Average", "Respondents"}}
	for _, g := range groups {
		s.rows = append(s.rows, []string{g.Group, g.AverageLabel + bandSuffix(g.Band), strconv.Itoa(g.Respondents)})
	}
	return s
}

func trendSection(r *analytics.QueryResult) section {
	s := section{title: "Trend (moving average)", headers: append([]string{"Quarter"}, r.Groups...)}
	for qi, quarter := range r.Quarters {
		row := []string{quarter}
		for _, t := range r.Trends {
			cell := analytics.NotAvailable
			if qi < len(t.MovingAverage) {
				cell = t.MovingAverage[qi].Round1().String()
			}
			row = append(row, cell)
		}
		s.rows = append(s.rows, row)
	}
	return s
}

// highlightMarks suffix highlighted cells so they survive plain text.
var highlightMarks = map[analytics.Highlight]string{
	analytics.HighlightAbove: " +",
	analytics.HighlightBelow: " -",
}

func topicSection(title string, t analytics.TopicTable) section {
	s := section{title: title}
	for _, c := range t.Columns {
		s.headers = append(s.headers, c.Name)
	}
	for _, row := range t.Rows {
		cells := []string{row.Label, row.Total.String()}
		for _, c := range row.Cells {
			cells = append(cells, c.Value.String()+highlightMarks[c.Highlight])
		}
		s.rows = append(s.rows, cells)
	}
	return s
}

func distributionSection(d analytics.RatingDistribution) section {
	s := section{
		title:   fmt.Sprintf("Rating distribution (%d reviews)", d.Total),
		headers: []string{"Rating", "Count", "Share %", "Momentum"},
	}
	for _, b := range d.Buckets {
		s.rows = append(s.rows, []string{
			strconv.Itoa(b.Rating),
			strconv.Itoa(b.Count),
			strconv.FormatFloat(b.Share, 'f', 1, 64),
			string(b.Momentum),
		})
	}
	return s
}

func reviewSection(l analytics.ReviewListing) section {
	s := section{
		title:   fmt.Sprintf("Reviews mentioning %s (%d)", l.Topic, len(l.Rows)),
		headers: []string{"Date", "Rating", "Review"},
	}
	for _, r := range l.Rows {
		s.rows = append(s.rows, []string{r.Date, strconv.Itoa(r.Rating), truncate(r.Review, textReviewWidth)})
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

type metaReport struct{ m analytics.Meta }

func (m metaReport) sections() []section {
	meta := m.m
	lines := []string{
		"Fingerprint: " + meta.Fingerprint,
		"Records: " + strconv.Itoa(meta.Records),
		"Topics: " + strings.Join(meta.Topics, ", "),
	}
	if meta.MinDate != "" {
		lines = append(lines, "Dates: "+meta.MinDate+" .. "+meta.MaxDate)
	}
	if n := len(meta.Quarters); n > 0 {
		lines = append(lines, "Quarter axis: "+meta.Quarters[0]+" .. "+meta.Quarters[n-1])
	}
	lines = append(lines,
		fmt.Sprintf("Defaults: percent threshold %g, rating threshold %g, rating %s %d",
			meta.DefaultPercentThreshold, meta.DefaultRatingThreshold, meta.DefaultRatingBound.Mode, meta.DefaultRatingBound.Upper),
	)

	entities := section{title: "Entities", headers: []string{"#", "Entity"}}
	for i, e := range meta.Entities {
		entities.rows = append(entities.rows, []string{strconv.Itoa(i + 1), e})
	}
	return []section{{title: "Dataset", lines: lines}, entities}
}

//Personal.AI order the ending
