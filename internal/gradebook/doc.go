// Package gradebook is the persistent record keeper behind the assignment
// pipelines. It stores assignments, students, notebooks, the master copies of
// graded cells, submissions, and autograded results in SQLite.
//
// Lookups for absent entities fail with services.ErrMissingEntry so callers
// can decide between auto-creation and a fatal configuration error.
// Destructive operations refuse to delete grading history: removing a
// notebook or assignment that already has submissions fails with
// services.ErrConflictingState and leaves the store untouched.
package gradebook
