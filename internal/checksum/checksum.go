// Package checksum fingerprints the graded content of a cell. The digest
// covers the cell's source, kind, grading flags, identifier, and point value,
// and nothing about surrounding cells, so reordering unrelated cells never
// changes it. The distribution pipeline computes it after solutions and
// hidden tests are stripped so the stored value matches exactly what the
// student receives.
package checksum

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strconv"

	"chalk/internal/notebook"
)

// Compute returns the lowercase hex digest of the cell's graded content.
// Deterministic and stable across runs on unchanged input.
func Compute(cell *notebook.Cell) string {
	h := sha256.New()

	write := func(field string) {
		var length [8]byte
		binary.BigEndian.PutUint64(length[:], uint64(len(field)))
		h.Write(length[:])
		h.Write([]byte(field))
	}

	write(string(cell.Source))
	write(cell.Kind)
	write(flag(cell.IsGrade()))
	write(flag(cell.IsSolution()))
	write(flag(cell.IsLocked()))
	write(cell.GradeID())
	if cell.IsGrade() {
		write(strconv.FormatFloat(cell.Points(), 'g', -1, 64))
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Matches reports whether the cell's current content matches the stored
// checksum. Cells with no stored checksum never match.
func Matches(cell *notebook.Cell) bool {
	stored := cell.Checksum()
	if stored == "" {
		return false
	}
	return Compute(cell) == stored
}

func flag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
