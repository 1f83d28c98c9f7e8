package core

import (
	"strings"

	"github.com/illarion/hush/internal/storage"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffOp says which side of a comparison a line belongs to
type DiffOp int

const (
	DiffSame DiffOp = iota
	DiffRemoved
	DiffAdded
)

// DiffLine is one rendered record in a vault comparison
type DiffLine struct {
	Op   DiffOp
	Text string
}

// String renders the line with a unified-diff style prefix
func (l DiffLine) String() string {
	switch l.Op {
	case DiffRemoved:
		return "- " + l.Text
	case DiffAdded:
		return "+ " + l.Text
	default:
		return "  " + l.Text
	}
}

// DiffRecords compares two record sets line by line. Each record renders as
// title, login and flags separated by tabs; secrets are never rendered, so a
// changed secret alone produces no difference.
func DiffRecords(a, b []storage.Record) []DiffLine {
	left, right := renderRecords(a), renderRecords(b)
	if left == right {
		return nil
	}

	dmp := diffmatchpatch.New()
	ca, cb, lineArray := dmp.DiffLinesToChars(left, right)
	diffs := dmp.DiffMain(ca, cb, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var out []DiffLine
	for _, d := range diffs {
		op := DiffSame
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = DiffRemoved
		case diffmatchpatch.DiffInsert:
			op = DiffAdded
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out = append(out, DiffLine{Op: op, Text: line})
		}
	}
	return out
}

// HasChanges reports whether any line differs
func HasChanges(lines []DiffLine) bool {
	for _, l := range lines {
		if l.Op != DiffSame {
			return true
		}
	}
	return false
}

func renderRecords(records []storage.Record) string {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(oneLine(r.Title))
		b.WriteByte('\t')
		b.WriteString(oneLine(r.Login))
		b.WriteByte('\t')
		b.WriteString(flags(r))
		b.WriteByte('\n')
	}
	return b.String()
}

func flags(r storage.Record) string {
	var f []string
	if r.IsFavorite {
		f = append(f, "fav")
	}
	if r.Gated() {
		f = append(f, "token="+r.TokenID)
	}
	if len(f) == 0 {
		return "-"
	}
	return strings.Join(f, ",")
}

// oneLine keeps embedded newlines from splitting a record across diff lines
func oneLine(s string) string {
	return strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`).Replace(s)
}
