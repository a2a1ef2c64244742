package session

import "strings"

// examRoutePrefix is the SPA path prefix reserved for the in-progress
// exam-taking view. Clients report their current route on every
// heartbeat; anything under this prefix suppresses idle enforcement.
const examRoutePrefix = "/exam/"

// IsExamRoute reports whether the given client route is inside the
// active exam-taking flow. Pure string predicate, no I/O.
func IsExamRoute(path string) bool {
	if path == "" {
		return false
	}
	// Ignore query/fragment noise from sloppy clients.
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	return path == strings.TrimSuffix(examRoutePrefix, "/") ||
		strings.HasPrefix(path, examRoutePrefix)
}
