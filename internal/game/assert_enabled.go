//go:build assert_enabled

package game

// Assert panics when cond is false. Built with -tags assert_enabled.
func Assert(cond bool, msg string) bool {
	if !cond {
		panic("assert failed: " + msg)
	}
	return true
}
