package diagfmt

import (
	"encoding/json"
	"io"
	"strings"

	"docgap/internal/classify"
	"docgap/internal/report"
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
)

// SarifRunMeta describes the tool in the SARIF run.
type SarifRunMeta struct {
	ToolName    string
	ToolVersion string
	InfoURI     string
}

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	InfoURI string      `json:"informationUri,omitempty"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           sarifRegion   `json:"region"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32        `json:"startLine"`
	StartColumn uint32        `json:"startColumn"`
	Snippet     *sarifMessage `json:"snippet,omitempty"`
}

// ruleUnclassified is used for messages without a known item kind.
const ruleUnclassified = "undocumented"

// Sarif форматирует отчёт в SARIF (v2.1.0). Every entry becomes a warning
// result; rules are the item kinds that occur, in first-seen order.
func Sarif(w io.Writer, idx *report.Index, opts JSONOpts, meta SarifRunMeta) error {
	driver := sarifDriver{
		Name:    meta.ToolName,
		Version: meta.ToolVersion,
		InfoURI: meta.InfoURI,
		Rules:   []sarifRule{},
	}
	seen := make(map[string]bool)
	results := make([]sarifResult, 0, idx.Len())

	_ = idx.Each(func(g *report.FileGroup) error {
		uri := formatPath(g.Path, opts.PathMode, opts.Root)
		for _, e := range g.Entries {
			if opts.Max > 0 && len(results) >= opts.Max {
				return nil
			}
			msg := e.Text
			if opts.Compact {
				msg = classify.Shorten(msg)
			}
			rule := ruleUnclassified
			desc := "missing documentation"
			if c := classify.Classify(e.Text); c.Matched {
				rule = c.Kind.Key()
				desc = "missing documentation for " + c.Tail
			}
			if !seen[rule] {
				seen[rule] = true
				driver.Rules = append(driver.Rules, sarifRule{ID: rule, ShortDescription: sarifMessage{Text: desc}})
			}

			region := sarifRegion{StartLine: e.Row, StartColumn: e.Col}
			if opts.IncludeHighlights && len(e.Pieces) > 0 {
				var sb strings.Builder
				for _, p := range e.Pieces {
					sb.WriteString(p.Prefix)
					sb.WriteString(p.Highlight)
					sb.WriteString(p.Suffix)
				}
				region.Snippet = &sarifMessage{Text: sb.String()}
			}
			results = append(results, sarifResult{
				RuleID:  rule,
				Level:   "warning",
				Message: sarifMessage{Text: msg},
				Locations: []sarifLocation{{
					PhysicalLocation: sarifPhysical{
						ArtifactLocation: sarifArtifact{URI: uri},
						Region:           region,
					},
				}},
			})
		}
		return nil
	})

	log := sarifLog{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs:    []sarifRun{{Tool: sarifTool{Driver: driver}, Results: results}},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}
