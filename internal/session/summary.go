package session

import (
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SummaryFormat selects how WriteSummary renders completed configurations.
type SummaryFormat string

const (
	SummaryText SummaryFormat = "text"
	SummaryYAML SummaryFormat = "yaml"
)

// ParseSummaryFormat accepts "", "none", "text" or "yaml". Empty and "none" return ok=false.
func ParseSummaryFormat(raw string) (f SummaryFormat, ok bool, err error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none":
		return "", false, nil
	case string(SummaryText):
		return SummaryText, true, nil
	case string(SummaryYAML):
		return SummaryYAML, true, nil
	default:
		return "", false, fmt.Errorf("unknown summary format %q (want text or yaml)", raw)
	}
}

type summaryItem struct {
	Text string `yaml:"text"`
	Size string `yaml:"size,omitempty"`
}

type summaryEntry struct {
	ID             string        `yaml:"id"`
	Label          string        `yaml:"label"`
	Keyword        string        `yaml:"keyword"`
	ProjectNumber  string        `yaml:"project_number"`
	SequenceNumber int           `yaml:"sequence_number"`
	CompletedAt    string        `yaml:"completed_at,omitempty"`
	Items          []summaryItem `yaml:"items"`
}

type summaryDoc struct {
	Configurations []summaryEntry `yaml:"configurations"`
}

// WriteSummary writes the completed configurations in display order.
func WriteSummary(w io.Writer, configs []CompletedConfiguration, format SummaryFormat) error {
	switch format {
	case SummaryYAML:
		doc := summaryDoc{Configurations: make([]summaryEntry, 0, len(configs))}
		for _, c := range configs {
			e := summaryEntry{
				ID:             c.ID,
				Label:          DisplayLabel(c),
				Keyword:        string(c.Keyword),
				ProjectNumber:  c.ProjectNumber,
				SequenceNumber: c.SequenceNumber,
			}
			if !c.CompletedAt.IsZero() {
				e.CompletedAt = c.CompletedAt.UTC().Format(time.RFC3339)
			}
			for _, it := range c.Items {
				e.Items = append(e.Items, summaryItem{Text: it.Text, Size: string(it.SelectedSize)})
			}
			doc.Configurations = append(doc.Configurations, e)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode summary: %w", err)
		}
		return enc.Close()
	case SummaryText:
		for _, c := range configs {
			names := make([]string, len(c.Items))
			for i, it := range c.Items {
				names[i] = ItemText(it)
			}
			if _, err := fmt.Fprintf(w, "%s: %s\n", DisplayLabel(c), strings.Join(names, ", ")); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown summary format %q", format)
	}
}
