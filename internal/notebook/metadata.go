package notebook

import "encoding/json"

// Grading metadata keys within the chalk namespace.
const (
	KeyGrade    = "grade"
	KeySolution = "solution"
	KeyLocked   = "locked"
	KeyGradeID  = "grade_id"
	KeyPoints   = "points"
	KeyChecksum = "checksum"
)

func (c *Cell) namespace() map[string]any {
	if c.Metadata == nil {
		return nil
	}
	ns, _ := c.Metadata[MetadataNamespace].(map[string]any)
	return ns
}

func (c *Cell) ensureNamespace() map[string]any {
	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}
	ns, ok := c.Metadata[MetadataNamespace].(map[string]any)
	if !ok {
		ns = map[string]any{}
		c.Metadata[MetadataNamespace] = ns
	}
	return ns
}

func (c *Cell) metaBool(key string) bool {
	ns := c.namespace()
	if ns == nil {
		return false
	}
	v, _ := ns[key].(bool)
	return v
}

func (c *Cell) metaString(key string) string {
	ns := c.namespace()
	if ns == nil {
		return ""
	}
	v, _ := ns[key].(string)
	return v
}

// HasGradingMetadata reports whether the cell carries the chalk namespace at all.
func (c *Cell) HasGradingMetadata() bool {
	return c.namespace() != nil
}

// IsGrade reports whether the cell is scored during autograding.
func (c *Cell) IsGrade() bool { return c.metaBool(KeyGrade) }

// IsSolution reports whether the cell holds authored content the student
// must re-fill.
func (c *Cell) IsSolution() bool { return c.metaBool(KeySolution) }

// IsLocked reports whether the cell must not be edited or deleted.
func (c *Cell) IsLocked() bool { return c.metaBool(KeyLocked) }

// IsGradedTest reports whether the cell is an instructor test: scored but not
// a solution region. These are the cells overwritten from the gradebook
// during sanitization.
func (c *Cell) IsGradedTest() bool { return c.IsGrade() && !c.IsSolution() }

// GradeID returns the cell's stable identifier, or "".
func (c *Cell) GradeID() string { return c.metaString(KeyGradeID) }

// Checksum returns the stored content fingerprint, or "".
func (c *Cell) Checksum() string { return c.metaString(KeyChecksum) }

// Points returns the cell's point value. Notebook JSON may carry it as any
// numeric type.
func (c *Cell) Points() float64 {
	ns := c.namespace()
	if ns == nil {
		return 0
	}
	switch v := ns[KeyPoints].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	default:
		return 0
	}
}

// HasPoints reports whether a point value is recorded at all. Scored cells
// without one are a metadata defect, distinct from an explicit zero.
func (c *Cell) HasPoints() bool {
	ns := c.namespace()
	if ns == nil {
		return false
	}
	_, ok := ns[KeyPoints]
	return ok
}

// ClearGradingMetadata removes the chalk namespace from the cell entirely.
func (c *Cell) ClearGradingMetadata() {
	if c.Metadata != nil {
		delete(c.Metadata, MetadataNamespace)
	}
}

// SetGrade marks or unmarks the cell as scored.
func (c *Cell) SetGrade(v bool) { c.ensureNamespace()[KeyGrade] = v }

// SetSolution marks or unmarks the cell as a solution region.
func (c *Cell) SetSolution(v bool) { c.ensureNamespace()[KeySolution] = v }

// SetLocked marks or unmarks the cell as undeletable.
func (c *Cell) SetLocked(v bool) { c.ensureNamespace()[KeyLocked] = v }

// SetGradeID assigns the stable identifier.
func (c *Cell) SetGradeID(id string) { c.ensureNamespace()[KeyGradeID] = id }

// SetPoints assigns the point value.
func (c *Cell) SetPoints(points float64) { c.ensureNamespace()[KeyPoints] = points }

// SetChecksum stores the content fingerprint.
func (c *Cell) SetChecksum(sum string) { c.ensureNamespace()[KeyChecksum] = sum }
