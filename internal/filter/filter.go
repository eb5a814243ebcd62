// Package filter holds the cheap checks that decide whether a candidate file is worth
// parsing. Path filters never touch the filesystem; content filters see the bytes read
// once by the file task.
package filter

// PathFilter accepts or rejects a file by its path alone.
type PathFilter interface {
	Name() string
	AcceptPath(path string) bool
}

// ContentFilter accepts or rejects a file by its content.
type ContentFilter interface {
	Name() string
	AcceptContent(path string, content []byte) bool
}
