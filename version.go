package arbor

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the released version of the library and the arbor CLI.
var Version = strings.TrimSpace(version)
