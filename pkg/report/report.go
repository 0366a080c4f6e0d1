// Package report renders crack progress and run summaries as colored text,
// JSON or YAML.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/crackfang/pkg/ledger"
	"github.com/Sumatoshi-tech/crackfang/pkg/runner"
	"github.com/Sumatoshi-tech/crackfang/pkg/safeconv"
)

// Format selects how the summary is rendered.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const (
	separatorWidth = 80
	rateUnit       = "H/s"
	rateDigits     = 3
)

// ErrUnknownFormat indicates an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat parses a format name, case-insensitively. Empty selects text.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q (use text, json or yaml)", ErrUnknownFormat, name)
	}
}

// Line renders one attempt as "hash<TAB>password<TAB>elapsed", or
// "hash<TAB><Unknown password>" when it was not cracked.
func Line(attempt *ledger.Attempt) string {
	elapsed, err := attempt.ElapsedString()
	if err != nil {
		return attempt.Hash() + "\t" + attempt.String()
	}

	return attempt.Hash() + "\t" + attempt.String() + "\t" + elapsed
}

// Printer writes progress lines and the final summary. Progress lines are
// only written in text format, so JSON and YAML output stays parseable.
type Printer struct {
	out     io.Writer
	format  Format
	cracked *color.Color
	missed  *color.Color
	failed  *color.Color
	heading *color.Color
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer, format Format, noColor bool) *Printer {
	p := &Printer{
		out:     out,
		format:  format,
		cracked: color.New(color.FgGreen),
		missed:  color.New(color.FgYellow),
		failed:  color.New(color.FgRed),
		heading: color.New(color.Bold),
	}

	if noColor {
		for _, c := range []*color.Color{p.cracked, p.missed, p.failed, p.heading} {
			c.DisableColor()
		}
	}

	return p
}

// Banner announces the engine in use.
func (p *Printer) Banner(engineName string) {
	if p.format != FormatText {
		return
	}

	p.heading.Fprintf(p.out, "Running %s\n", engineName)
}

// Cracking announces the start of a search.
func (p *Printer) Cracking(hash string) {
	if p.format != FormatText {
		return
	}

	fmt.Fprintf(p.out, "Cracking: %s\n", hash)
}

// Result prints the line for one finished search.
func (p *Printer) Result(res runner.Result) {
	if p.format != FormatText {
		return
	}

	p.printLine(res)
}

func (p *Printer) printLine(res runner.Result) {
	switch {
	case res.Err != nil:
		p.failed.Fprintf(p.out, "%s\terror: %v\n", res.Attempt.Hash(), res.Err)
	case res.Attempt.Cracked():
		p.cracked.Fprintln(p.out, Line(res.Attempt))
	default:
		p.missed.Fprintln(p.out, Line(res.Attempt))
	}
}

// Summary writes the end-of-run summary in the printer's format.
func (p *Printer) Summary(s Summary) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")

		encodeErr := enc.Encode(s)
		if encodeErr != nil {
			return fmt.Errorf("encode json summary: %w", encodeErr)
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(p.out)

		encodeErr := enc.Encode(s)
		if encodeErr != nil {
			return fmt.Errorf("encode yaml summary: %w", encodeErr)
		}

		return enc.Close()
	default:
		p.textSummary(s)

		return nil
	}
}

func (p *Printer) textSummary(s Summary) {
	fmt.Fprintf(p.out, "\n%s\n", strings.Repeat("=", separatorWidth))

	for _, res := range s.results {
		p.printLine(res)
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(p.out)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false

	tbl.AppendHeader(table.Row{"Hash", "Password", "Elapsed", "Examined"})

	for _, entry := range s.Attempts {
		password := ledger.UnknownPassword
		if entry.Password != nil {
			password = *entry.Password
		}

		if entry.Error != "" {
			password = "error"
		}

		tbl.AppendRow(table.Row{entry.Hash, password, entry.Elapsed, humanize.Comma(safeconv.ClampUint64ToInt64(entry.Examined))})
	}

	tbl.AppendFooter(table.Row{
		fmt.Sprintf("Cracked %d/%d", s.Cracked, s.Total),
		s.Engine,
		ledger.FormatElapsed(time.Duration(s.DurationSeconds * float64(time.Second))),
		humanize.SIWithDigits(s.HashRate, rateDigits, rateUnit),
	})

	fmt.Fprintln(p.out)
	tbl.Render()

	fmt.Fprintf(p.out, "Search space: %s candidates over %d symbols, max length %d (%s)\n",
		humanize.Comma(safeconv.ClampUint64ToInt64(s.DomainSize)), s.CharsetSize, s.MaxLength, s.Encoding)
}

// Meta describes the search configuration for the summary.
type Meta struct {
	Charset    string
	Encoding   string
	Partition  string
	DomainSize uint64
	MaxLength  int
	Workers    int
}

// Entry is one attempt in the summary document.
type Entry struct {
	Password *string `json:"password" yaml:"password"`
	Hash     string  `json:"hash" yaml:"hash"`
	Elapsed  string  `json:"elapsed,omitempty" yaml:"elapsed,omitempty"`
	Error    string  `json:"error,omitempty" yaml:"error,omitempty"`
	Examined uint64  `json:"examined" yaml:"examined"`
	Cracked  bool    `json:"cracked" yaml:"cracked"`
}

// Summary is the end-of-run document.
type Summary struct {
	RunID           string  `json:"run_id" yaml:"run_id"`
	Engine          string  `json:"engine" yaml:"engine"`
	Charset         string  `json:"charset" yaml:"charset"`
	Encoding        string  `json:"encoding" yaml:"encoding"`
	Partition       string  `json:"partition,omitempty" yaml:"partition,omitempty"`
	Attempts        []Entry `json:"attempts" yaml:"attempts"`
	DomainSize      uint64  `json:"domain_size" yaml:"domain_size"`
	Examined        uint64  `json:"examined" yaml:"examined"`
	DurationSeconds float64 `json:"duration_seconds" yaml:"duration_seconds"`
	HashRate        float64 `json:"hash_rate" yaml:"hash_rate"`
	CharsetSize     int     `json:"charset_size" yaml:"charset_size"`
	MaxLength       int     `json:"max_length" yaml:"max_length"`
	Workers         int     `json:"workers" yaml:"workers"`
	Cracked         int     `json:"cracked" yaml:"cracked"`
	Total           int     `json:"total" yaml:"total"`

	results []runner.Result
}

// NewSummary builds the summary of a run.
func NewSummary(meta Meta, outcome runner.Outcome) Summary {
	s := Summary{
		RunID:           outcome.RunID,
		Engine:          outcome.Engine,
		Charset:         meta.Charset,
		CharsetSize:     len([]rune(meta.Charset)),
		Encoding:        meta.Encoding,
		Partition:       meta.Partition,
		DomainSize:      meta.DomainSize,
		MaxLength:       meta.MaxLength,
		Workers:         meta.Workers,
		Examined:        outcome.Examined,
		DurationSeconds: outcome.Duration.Seconds(),
		HashRate:        outcome.HashRate(),
		Cracked:         outcome.Cracked(),
		Total:           len(outcome.Results),
		Attempts:        make([]Entry, 0, len(outcome.Results)),
		results:         outcome.Results,
	}

	for _, res := range outcome.Results {
		entry := Entry{Hash: res.Attempt.Hash(), Examined: res.Stats.Examined}

		if res.Err != nil {
			entry.Error = res.Err.Error()
		} else if password, ok := res.Attempt.Password(); ok {
			entry.Cracked = true
			entry.Password = &password
			entry.Elapsed, _ = res.Attempt.ElapsedString()
		}

		s.Attempts = append(s.Attempts, entry)
	}

	return s
}
