package app

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
)

// section formats a help heading followed by an indented body.
func section(title, body string) string {
	return fmt.Sprintf("%s\n%s\n\n", pterm.Yellow(title), body)
}

func helpText() string {
	var b strings.Builder

	b.WriteString(section("DESCRIPTION", "\t\t{{.Usage}}"))
	b.WriteString(section(
		"USAGE",
		"\t\t{{.HelpName}} {{if .UsageText}}{{ .UsageText }}{{end}}",
	))

	b.WriteString(
		"{{if .Version}}" + section("VERSION", "\t\t{{.Version}}") + "{{end}}",
	)

	b.WriteString(section(
		"COMMANDS",
		fmt.Sprintf(
			"{{range .Commands}}{{if not .HideHelp}}   %s{{ `\t`}}{{.Usage}}{{ `\n` }}{{end}}{{end}}",
			pterm.Green("{{join .Names `, `}}"),
		),
	))

	b.WriteString(fmt.Sprintf(
		"%s\n{{range .VisibleFlags}}\t\t{{if .Aliases}}{{range $element := .Aliases}}%s,{{end}}{{end}} %s\n\t\t\t\t{{.Usage}}\n\n{{end}}",
		pterm.Yellow("OPTIONS"),
		pterm.Green("-{{$element}}"),
		pterm.Green("--{{.Name}} {{.DefaultText}}"),
	))

	b.WriteString(section("KEYS", keysHelp()))
	b.WriteString(section("ENVIRONMENTAL VARIABLES", "\t\t"+envHelp()))
	b.WriteString(section(
		"WEBSITE",
		"\t\thttps://github.com/ayoisaiah/moodmap",
	))

	return b.String()
}

func keysHelp() string {
	keys := [][2]string{
		{"t, space", "start or pause emotion tracking"},
		{"←/h, →/l", "adjust heatmap intensity"},
		{"a", "show or hide the analytics panel"},
		{"esc", "dismiss an error message"},
		{"q, ctrl+c", "save the session and quit"},
	}

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("\t\t%s\t%s", pterm.Green(k[0]), k[1]))
	}

	return strings.Join(lines, "\n")
}

func envHelp() string {
	return `
MOODMAP_API_KEY, OPENAI_API_KEY: API key for the emotion analysis model. MOODMAP_API_KEY takes precedence.

MOODMAP_BASE_URL: base URL of an OpenAI-compatible endpoint to use instead of the OpenAI API.

MOODMAP_ENV: keep a separate config file, database and log file for the named environment.

MOODMAP_NO_COLOR, NO_COLOR: set to any value to avoid printing ANSI escape sequences for color output.

Variables can also be placed in a .env file in the current directory.`
}
