package notebook

import (
	"encoding/json"
	"strings"
)

// Cell kinds understood by the pipeline.
const (
	KindCode     = "code"
	KindMarkdown = "markdown"
	KindRaw      = "raw"
)

// MetadataNamespace is the key under cell metadata holding chalk's grading
// flags (grade, solution, locked, grade_id, points, checksum).
const MetadataNamespace = "chalk"

// Source holds cell or output text. Notebook files store multiline text
// either as a single string or as a list of line fragments; both decode into
// the joined form and re-encode as a single string.
type Source string

func (s *Source) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = Source(single)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	*s = Source(strings.Join(lines, ""))
	return nil
}

// Output is one captured result of executing a code cell.
type Output struct {
	Type           string         `json:"output_type"`
	Name           string         `json:"name,omitempty"`
	Text           Source         `json:"text,omitempty"`
	Ename          string         `json:"ename,omitempty"`
	Evalue         string         `json:"evalue,omitempty"`
	Traceback      []string       `json:"traceback,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	ExecutionCount *int           `json:"execution_count,omitempty"`
}

// IsError reports whether the output records a raised exception.
func (o Output) IsError() bool {
	return o.Type == "error"
}

// Cell is the smallest editable unit of a notebook document.
type Cell struct {
	Kind           string         `json:"cell_type"`
	Source         Source         `json:"source"`
	Metadata       map[string]any `json:"metadata"`
	Outputs        []Output       `json:"outputs,omitempty"`
	ExecutionCount *int           `json:"execution_count,omitempty"`
}

// MarshalJSON emits the fields appropriate for the cell kind: code cells
// always carry outputs and execution_count, other kinds never do.
func (c Cell) MarshalJSON() ([]byte, error) {
	meta := c.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	if c.Kind == KindCode {
		outputs := c.Outputs
		if outputs == nil {
			outputs = []Output{}
		}
		return json.Marshal(struct {
			Kind           string         `json:"cell_type"`
			Source         string         `json:"source"`
			Metadata       map[string]any `json:"metadata"`
			Outputs        []Output       `json:"outputs"`
			ExecutionCount *int           `json:"execution_count"`
		}{c.Kind, string(c.Source), meta, outputs, c.ExecutionCount})
	}
	return json.Marshal(struct {
		Kind     string         `json:"cell_type"`
		Source   string         `json:"source"`
		Metadata map[string]any `json:"metadata"`
	}{c.Kind, string(c.Source), meta})
}

// NewCodeCell builds a code cell with empty metadata.
func NewCodeCell(source string) Cell {
	return Cell{Kind: KindCode, Source: Source(source), Metadata: map[string]any{}}
}

// NewMarkdownCell builds a markdown cell with empty metadata.
func NewMarkdownCell(source string) Cell {
	return Cell{Kind: KindMarkdown, Source: Source(source), Metadata: map[string]any{}}
}
