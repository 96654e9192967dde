// Package embedded provides the web page templates and static assets compiled into the binary.
package embedded

import (
	"embed"
)

// Files contains:
//   - templates/ - html/template pages rendered by the web handlers
//   - static/    - stylesheet served under /static/
//
//go:embed templates static
var Files embed.FS
