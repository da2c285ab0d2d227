// Package osutil holds platform constants shared across moodmap
package osutil

const (
	Windows = "windows"
	Darwin  = "darwin"
)

const (
	FilePermission = 0o600
)
