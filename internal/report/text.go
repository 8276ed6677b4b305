package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/phobologic/reqcheck/internal/check"
)

var (
	colorDim    = lipgloss.Color("8")
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func writeText(w io.Writer, res *check.Result) error {
	var b strings.Builder

	if n := len(res.ParseErrors); n > 0 {
		fmt.Fprintf(&b, "The following %d files could not be parsed:\n", n)
		for _, e := range res.ParseErrors {
			fmt.Fprintf(&b, "  %s\n", e.Error())
		}
		b.WriteString("\n")
	}

	if res.Clean() {
		b.WriteString("There were no unknown symbols found.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "The following %d unknown symbols were found:\n", len(res.Unknown))
	rows := make([][]string, 0, len(res.Unknown))
	for _, u := range res.Unknown {
		rows = append(rows, []string{u.Symbol.Name, strings.Join(describeGuesses(u), "\n")})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Unknown Symbol", "Guessed Dependency").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// describeGuesses annotates indirect dependencies with the chain that
// installs them.
func describeGuesses(u check.Unknown) []string {
	out := make([]string, len(u.Guesses))
	for i, g := range u.Guesses {
		out[i] = g
		if via := u.Via[g]; len(via) > 0 {
			out[i] = fmt.Sprintf("%s (via %s)", g, strings.Join(via, " > "))
		}
	}
	return out
}
