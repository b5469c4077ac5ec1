package theme

import (
	"fmt"
	"os"
)

const (
	cyan    = "\033[36m"
	magenta = "\033[35m"
	yellow  = "\033[33m"
	reset   = "\033[0m"
)

// Banner returns the CLI banner.
func Banner() string {
	return "" +
		cyan + "  ┌─┐ ┌┬┐┬ ┬┬┌┬┐┌─┐┌─┐┌─┐┌┐┌\n" + reset +
		cyan + "  │    │ ││││ │ └─┐│  ├─┤│││\n" + reset +
		cyan + "  └─┘  ┴ └┴┘┴ ┴ └─┘└─┘┴ ┴┘└┘\n" + reset +
		yellow + "  ───────────────────────────\n" + reset +
		"  who is close to whom, from " + magenta + "follows, tags and replies" + reset + "\n"
}

// PrintBanner prints the banner to stdout.
func PrintBanner() {
	fmt.Print(Banner())
}

// Heading formats a section title for terminal output.
func Heading(s string) string { return magenta + s + reset }

// Handle formats a screen name.
func Handle(name string) string { return cyan + "@" + name + reset }

// HandleWidth is Handle padded to width visible columns. Padding goes inside
// the color codes so table columns line up.
func HandleWidth(name string, width int) string {
	return cyan + fmt.Sprintf("%-*s", width, "@"+name) + reset
}

// Fatal prints err in the CLI's style and exits non-zero.
func Fatal(err error) {
	fmt.Fprintln(os.Stderr, yellow+"error:"+reset, err)
	os.Exit(1)
}
