package builtins

import "os"

// currentEnviron snapshots the process environment for `exec` without
// `-c`.
func currentEnviron() []string {
	return os.Environ()
}
