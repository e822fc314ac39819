package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/questlog/questlog/pkg/library"
	"github.com/questlog/questlog/pkg/reconcile"
)

// report is the serializable form of a pass result for yaml/json output.
type report struct {
	PassID    string         `json:"pass_id" yaml:"pass_id"`
	StartedAt time.Time      `json:"started_at" yaml:"started_at"`
	Duration  string         `json:"duration" yaml:"duration"`
	Records   []recordReport `json:"records" yaml:"records"`
	Summary   summaryReport  `json:"summary" yaml:"summary"`
}

type recordReport struct {
	ID            string            `json:"id" yaml:"id"`
	Title         string            `json:"title" yaml:"title"`
	Status        string            `json:"status" yaml:"status"`
	Stage         string            `json:"stage,omitempty" yaml:"stage,omitempty"`
	Error         string            `json:"error,omitempty" yaml:"error,omitempty"`
	AppliedFields []string          `json:"applied_fields,omitempty" yaml:"applied_fields,omitempty"`
	Ambiguities   []ambiguityReport `json:"ambiguities,omitempty" yaml:"ambiguities,omitempty"`
	LookupErrors  map[string]string `json:"lookup_errors,omitempty" yaml:"lookup_errors,omitempty"`
}

type ambiguityReport struct {
	Catalog    string   `json:"catalog" yaml:"catalog"`
	Candidates []string `json:"candidates" yaml:"candidates"`
}

type summaryReport struct {
	Total     int `json:"total" yaml:"total"`
	Updated   int `json:"updated" yaml:"updated"`
	Unchanged int `json:"unchanged" yaml:"unchanged"`
	Ambiguous int `json:"ambiguous" yaml:"ambiguous"`
	Failed    int `json:"failed" yaml:"failed"`
}

func buildReport(result *reconcile.Result) report {
	r := report{
		PassID:    result.PassID,
		StartedAt: result.StartedAt,
		Duration:  result.Duration.Round(time.Millisecond).String(),
		Records:   make([]recordReport, 0, len(result.Outcomes)),
		Summary: summaryReport{
			Total:     result.Total(),
			Updated:   result.Done,
			Unchanged: result.NoChange,
			Ambiguous: result.Ambiguous,
			Failed:    result.Failed,
		},
	}

	for _, o := range result.Outcomes {
		rec := recordReport{
			ID:     o.RecordID,
			Title:  o.Title,
			Status: o.Status.String(),
			Stage:  string(o.Stage),
		}
		if o.Err != nil {
			rec.Error = o.Err.Error()
		}
		for _, f := range o.AppliedFields {
			rec.AppliedFields = append(rec.AppliedFields, string(f))
		}
		rec.Ambiguities = ambiguityReports(o.Ambiguities)
		if len(o.LookupErrors) > 0 {
			rec.LookupErrors = make(map[string]string, len(o.LookupErrors))
			for catalog, err := range o.LookupErrors {
				rec.LookupErrors[string(catalog)] = err.Error()
			}
		}
		r.Records = append(r.Records, rec)
	}
	return r
}

func ambiguityReports(ambiguities map[library.Source][]library.Candidate) []ambiguityReport {
	if len(ambiguities) == 0 {
		return nil
	}

	catalogs := make([]string, 0, len(ambiguities))
	for catalog := range ambiguities {
		catalogs = append(catalogs, string(catalog))
	}
	sort.Strings(catalogs)

	reports := make([]ambiguityReport, 0, len(catalogs))
	for _, catalog := range catalogs {
		ar := ambiguityReport{Catalog: catalog}
		for _, c := range ambiguities[library.Source(catalog)] {
			ar.Candidates = append(ar.Candidates, fmt.Sprintf("%s (%s)", c.ID, c.Title))
		}
		reports = append(reports, ar)
	}
	return reports
}

// writeReport renders the pass result in the requested format.
func writeReport(result *reconcile.Result, format string) error {
	switch format {
	case "yaml":
		out, err := yaml.Marshal(buildReport(result))
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err

	case "json":
		out, err := json.MarshalIndent(buildReport(result), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil

	default:
		printTable(result)
		return nil
	}
}

// printTable writes the human-readable per-record report.
func printTable(result *reconcile.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "RECORD\tSTATUS\tDETAIL\n")
	for _, o := range result.Outcomes {
		fmt.Fprintf(w, "%s\t%s\t%s\n", o.Title, o.Status, outcomeDetail(o))
	}
	w.Flush()

	fmt.Printf("\n%d records: %d updated, %d unchanged, %d ambiguous, %d failed (%s)\n",
		result.Total(), result.Done, result.NoChange, result.Ambiguous,
		result.Failed, result.Duration.Round(time.Millisecond))
}

func outcomeDetail(o reconcile.Outcome) string {
	switch o.Status {
	case reconcile.StatusDone:
		return fmt.Sprintf("%d fields updated", len(o.AppliedFields))
	case reconcile.StatusAmbiguous:
		detail := ""
		for _, ar := range ambiguityReports(o.Ambiguities) {
			if detail != "" {
				detail += "; "
			}
			detail += ar.Catalog + ":"
			for i, c := range ar.Candidates {
				if i > 0 {
					detail += ","
				}
				detail += " " + c
			}
		}
		return detail
	case reconcile.StatusFailed:
		return fmt.Sprintf("%s stage: %v", o.Stage, o.Err)
	default:
		return ""
	}
}
