package receipt

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// FormatForPrintPreview is a deterministic substitution pass: it tags the
// fixed section headers and "label: $amount" lines so preview surfaces can
// render them centered/bold. Tagging is pure string work driven by the
// rule table; the ANSI styling happens separately in RenderPreview.
func FormatForPrintPreview(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		for _, rule := range previewRules {
			if rule.match(line) {
				lines[i] = rule.tag(line)
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

// previewRule is one substitution: a line predicate and the tag wrapper it
// applies. First matching rule wins.
type previewRule struct {
	name  string
	match func(string) bool
	tag   func(string) string
}

var amountLinePattern = regexp.MustCompile(`:\s+\$\d+\.\d{2}$`)

var sectionHeaders = map[string]struct{}{
	headerTitle:       {},
	headerSummary:     {},
	headerPayments:    {},
	headerDepartments: {},
	headerStaff:       {},
}

var previewRules = []previewRule{
	{
		name: "section-header",
		match: func(line string) bool {
			_, ok := sectionHeaders[strings.TrimSpace(line)]
			return ok
		},
		tag: func(line string) string {
			return "<center><b>" + strings.TrimSpace(line) + "</b></center>"
		},
	},
	{
		name: "amount-line",
		match: func(line string) bool {
			return amountLinePattern.MatchString(line)
		},
		tag: func(line string) string {
			return "<b>" + line + "</b>"
		},
	},
}

// Styles used when a preview is rendered to an interactive terminal.
var (
	previewHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Align(lipgloss.Center).
				Width(receiptWidth)

	previewAmountStyle = lipgloss.NewStyle().Bold(true)
)

var (
	centerTagPattern = regexp.MustCompile(`^<center><b>(.*)</b></center>$`)
	boldTagPattern   = regexp.MustCompile(`^<b>(.*)</b>$`)
)

// RenderPreview resolves preview tags into styled terminal output. Lines
// without tags pass through untouched.
func RenderPreview(marked string) string {
	lines := strings.Split(marked, "\n")
	for i, line := range lines {
		if m := centerTagPattern.FindStringSubmatch(line); m != nil {
			lines[i] = previewHeaderStyle.Render(m[1])
			continue
		}
		if m := boldTagPattern.FindStringSubmatch(line); m != nil {
			lines[i] = previewAmountStyle.Render(m[1])
		}
	}
	return strings.Join(lines, "\n")
}
