package pipeline

// DocumentResult records the outcome for one notebook of one student.
type DocumentResult struct {
	StudentID  string
	NotebookID string
	Err        error
}

// OK reports whether the document came through its pass cleanly.
func (d DocumentResult) OK() bool { return d.Err == nil }

// Result aggregates a whole run.
type Result struct {
	RunID      string
	Operation  string
	Assignment string
	Documents  []DocumentResult
}

// Failed returns the documents that did not survive their pass.
func (r *Result) Failed() []DocumentResult {
	var failed []DocumentResult
	for _, d := range r.Documents {
		if !d.OK() {
			failed = append(failed, d)
		}
	}
	return failed
}

// OK reports whether every document succeeded.
func (r *Result) OK() bool { return len(r.Failed()) == 0 }
