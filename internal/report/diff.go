package report

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// InlineDiff renders the difference between two phrases as markdown:
// text only in the first phrase is struck through, text only in the second
// is bold. Shared text passes through untouched.
func InlineDiff(a, b string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var out strings.Builder
	for _, d := range diffs {
		text := d.Text
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			if strings.TrimSpace(text) == "" {
				out.WriteString(text)
			} else {
				out.WriteString("~~" + text + "~~")
			}
		case diffmatchpatch.DiffInsert:
			if strings.TrimSpace(text) == "" {
				out.WriteString(text)
			} else {
				out.WriteString("**" + text + "**")
			}
		default:
			out.WriteString(text)
		}
	}
	return out.String()
}
