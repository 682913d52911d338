package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/lotas/tabsurf/internal/types"
)

// Markdown renders a history or bookmark list as a markdown document,
// oldest entry first.
func Markdown(title string, records []types.NavigationRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n", title)
	fmt.Fprintf(&b, "> Exported %s, %s\n\n", time.Now().Format("2006-01-02 15:04"), plural(len(records), "entry", "entries"))

	if len(records) == 0 {
		b.WriteString("_Nothing here yet._\n")
		return b.String()
	}
	for _, r := range records {
		label := r.Title
		if label == "" {
			label = r.URL
		}
		fmt.Fprintf(&b, "- [%s](%s)\n", escapeLabel(label), r.URL)
	}
	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

var labelEscaper = strings.NewReplacer("[", `\[`, "]", `\]`)

func escapeLabel(s string) string {
	return labelEscaper.Replace(s)
}
