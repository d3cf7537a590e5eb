// Package notebook holds the in-memory document model: an ordered sequence of
// cells with metadata and outputs, plus JSON read/write against the on-disk
// notebook format. Transformation stages mutate a Notebook in place; the
// pipeline writes it back only after a full pass succeeds.
package notebook

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chalk/internal/fileutil"
)

// Ext is the notebook file extension.
const Ext = ".ipynb"

// Notebook is one document within an assignment.
type Notebook struct {
	Cells         []Cell         `json:"cells"`
	Metadata      map[string]any `json:"metadata"`
	NBFormat      int            `json:"nbformat"`
	NBFormatMinor int            `json:"nbformat_minor"`

	// Name is the notebook id: the basename without extension. Not serialized.
	Name string `json:"-"`
}

// New returns an empty notebook with the format version this tool writes.
func New(name string) *Notebook {
	return &Notebook{
		Name:          name,
		Metadata:      map[string]any{},
		NBFormat:      4,
		NBFormatMinor: 5,
		Cells:         []Cell{},
	}
}

// Read loads a notebook document and derives its Name from the path.
func Read(path string) (*Notebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read notebook: %w", err)
	}
	var nb Notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("parse notebook %s: %w", filepath.Base(path), err)
	}
	if nb.Metadata == nil {
		nb.Metadata = map[string]any{}
	}
	for i := range nb.Cells {
		if nb.Cells[i].Metadata == nil {
			nb.Cells[i].Metadata = map[string]any{}
		}
	}
	nb.Name = NameFromPath(path)
	return &nb, nil
}

// Write serializes the notebook atomically so a failed pass never leaves a
// half-written document behind.
func (nb *Notebook) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create notebook directory: %w", err)
	}
	data, err := json.MarshalIndent(nb, "", " ")
	if err != nil {
		return fmt.Errorf("encode notebook: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write notebook: %w", err)
	}
	return nil
}

// NameFromPath derives the notebook id from a file path.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Kernelspec returns the notebook's kernel name, display name, and language.
func (nb *Notebook) Kernelspec() (name, display, language string) {
	spec, _ := nb.Metadata["kernelspec"].(map[string]any)
	if spec == nil {
		return "", "", ""
	}
	name, _ = spec["name"].(string)
	display, _ = spec["display_name"].(string)
	language, _ = spec["language"].(string)
	return name, display, language
}

// SetKernelspec replaces the notebook's kernelspec metadata.
func (nb *Notebook) SetKernelspec(name, display, language string) {
	if nb.Metadata == nil {
		nb.Metadata = map[string]any{}
	}
	nb.Metadata["kernelspec"] = map[string]any{
		"name":         name,
		"display_name": display,
		"language":     language,
	}
}

// KernelspecJSON returns the kernelspec metadata serialized as JSON, or ""
// when the notebook does not declare one.
func (nb *Notebook) KernelspecJSON() string {
	spec, ok := nb.Metadata["kernelspec"]
	if !ok {
		return ""
	}
	data, err := json.Marshal(spec)
	if err != nil {
		return ""
	}
	return string(data)
}

// SetKernelspecJSON replaces the kernelspec metadata from serialized JSON.
func (nb *Notebook) SetKernelspecJSON(raw string) error {
	var spec map[string]any
	if err := json.Unmarshal([]byte(raw), &spec); err != nil {
		return fmt.Errorf("parse kernelspec: %w", err)
	}
	if nb.Metadata == nil {
		nb.Metadata = map[string]any{}
	}
	nb.Metadata["kernelspec"] = spec
	return nil
}

// GradeIDs returns the grade identifiers of all cells that carry one, in
// document order.
func (nb *Notebook) GradeIDs() []string {
	var ids []string
	for i := range nb.Cells {
		if id := nb.Cells[i].GradeID(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
