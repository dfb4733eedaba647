package schema

import "mamba-admin/internal/console"

// Context carries the ambient values schemas need so they never read process
// globals themselves: the acting user, the current year, the name of the
// surrounding project (empty outside one) and the interactive input source.
type Context struct {
	User        string
	Year        int
	ProjectName string
	Input       console.LineReader
}
