// Package version holds the release version and the optional update check.
package version

// VERSION is the released version of clef.
const VERSION = "v0.3.0"
