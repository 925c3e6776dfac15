package workspaces

import "regexp"

// Workspace names: letters, digits, '_' and '-' (case-insensitive), at least
// 3 characters, no leading or trailing separator, and no two separators in a
// row ("a--b" and "a_-b" are both invalid).
var nameRegex = regexp.MustCompile(`^(?i)[a-z0-9]+(?:[_-][a-z0-9]+)*$`)

// emailRegex is the address shape the mail pipeline accepts.
var emailRegex = regexp.MustCompile(`^(([^<>()[\]\\.,;:\s@"]+(\.[^<>()[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}))$`)

// ValidName reports whether name is an acceptable workspace name.
func ValidName(name string) bool {
	return len(name) >= 3 && nameRegex.MatchString(name)
}

// ValidEmail reports whether email looks like a deliverable address.
func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}
