package engine

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is the number of unchanged lines kept around each change.
const diffContext = 3

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
}

// lineDiff renders a line-oriented diff from current to generated. Unchanged
// runs longer than the context are collapsed into "@@" separators. Identical
// inputs yield "".
func lineDiff(path string, current, generated []byte) string {
	if string(current) == string(generated) {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(current), string(generated))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var all []diffLine
	for _, d := range diffs {
		for _, text := range splitLines(d.Text) {
			all = append(all, diffLine{op: d.Type, text: text})
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s (on disk)\n", path)
	fmt.Fprintf(&sb, "+++ %s (generated)\n", path)

	lastPrinted := -1
	for i, l := range all {
		if l.op == diffmatchpatch.DiffEqual && !nearChange(all, i) {
			continue
		}
		if lastPrinted >= 0 && i > lastPrinted+1 {
			sb.WriteString("@@\n")
		}
		switch l.op {
		case diffmatchpatch.DiffInsert:
			sb.WriteString("+")
		case diffmatchpatch.DiffDelete:
			sb.WriteString("-")
		case diffmatchpatch.DiffEqual:
			sb.WriteString(" ")
		}
		sb.WriteString(l.text)
		sb.WriteString("\n")
		lastPrinted = i
	}
	return sb.String()
}

func nearChange(all []diffLine, i int) bool {
	lo := max(0, i-diffContext)
	hi := min(len(all)-1, i+diffContext)
	for j := lo; j <= hi; j++ {
		if all[j].op != diffmatchpatch.DiffEqual {
			return true
		}
	}
	return false
}

// splitLines splits text into lines without their terminators.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
