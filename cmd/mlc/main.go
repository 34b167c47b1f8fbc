// Command mlc discovers Markdown and HTML files, extracts every hyperlink
// they declare, and verifies that each target is reachable.
package main

import (
	"os"

	"mlc/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
