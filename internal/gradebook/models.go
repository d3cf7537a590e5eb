package gradebook

import "time"

// Assignment is one graded assignment within a course.
type Assignment struct {
	Name     string
	CourseID string
	DueDate  *time.Time
}

// Student is one enrolled student.
type Student struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
}

// Notebook is one document belonging to an assignment. Kernelspec holds the
// instructor's execution environment as raw JSON so sanitization can restore
// it over whatever a submission claims.
type Notebook struct {
	Name       string
	Assignment string
	Kernelspec string
}

// GradeCell is the instructor's master copy of a graded or locked cell,
// captured during the distribution pass and restored verbatim during
// sanitization.
type GradeCell struct {
	Name       string
	Notebook   string
	Assignment string
	CellType   string
	Grade      bool
	Solution   bool
	Locked     bool
	Source     string
	Checksum   string
	MaxScore   float64
}

// Protected reports whether the cell's content belongs to the instructor and
// must be restored verbatim over whatever a submission carries.
func (c GradeCell) Protected() bool {
	return !c.Solution && (c.Grade || c.Locked)
}

// Submission records one student's turn-in of an assignment.
type Submission struct {
	Assignment string
	Student    string
	Timestamp  *time.Time
}

// SecondsLate returns the measured lateness against a due date. Submissions
// without a recoverable timestamp are never late.
func (s Submission) SecondsLate(due *time.Time) int64 {
	if s.Timestamp == nil || due == nil {
		return 0
	}
	late := int64(s.Timestamp.Sub(*due) / time.Second)
	if late < 0 {
		return 0
	}
	return late
}

// Grade is one autograded result for a cell in a student's submission.
type Grade struct {
	Cell        string
	Notebook    string
	Assignment  string
	Student     string
	AutoScore   float64
	MaxScore    float64
	NeedsManual bool
}
