//go:build !assert_enabled

package game

import "log"

// Assert logs when cond is false and reports it so the caller can skip the
// operation.
func Assert(cond bool, msg string) bool {
	if !cond {
		log.Printf("[MATCH] assert failed: %s", msg)
	}
	return cond
}
