package topics

import "strings"

// Topic syntax constants.
const (
	// Separator divides a topic into segments.
	Separator = "/"

	// SingleLevel is the wildcard matching exactly one segment.
	SingleLevel = "+"

	// MultiLevel is the wildcard matching all remaining segments.
	// It is only valid as the final segment of a pattern.
	MultiLevel = "#"
)

// Split returns the /-separated segments of a topic or pattern.
func Split(topic string) []string {
	return strings.Split(topic, Separator)
}

// Join assembles segments into a topic string.
func Join(segments []string) string {
	return strings.Join(segments, Separator)
}

// HasWildcard reports whether the pattern contains a + or # segment.
// A pattern without wildcards matches only the identical topic.
func HasWildcard(pattern string) bool {
	for _, seg := range Split(pattern) {
		if seg == SingleLevel || seg == MultiLevel {
			return true
		}
	}
	return false
}

// Match reports whether a concrete topic matches a subscription pattern.
//
// Segments are compared pairwise: a literal segment must equal the topic
// segment at the same position, + consumes exactly one segment, and a
// trailing # consumes all remaining segments, including zero (so "a/#"
// matches "a" itself). A segment-count mismatch without a trailing # is
// a non-match. There is no other prefix matching.
//
// Parameters:
//   - pattern: The subscription pattern (may contain wildcards)
//   - topic: The concrete topic to test
//
// Returns:
//   - bool: true if the topic matches the pattern
func Match(pattern, topic string) bool {
	if pattern == topic {
		return true
	}

	p := Split(pattern)
	t := Split(topic)

	for i, seg := range p {
		if seg == MultiLevel {
			// Valid only in final position; consumes the rest, even zero
			// segments.
			return i == len(p)-1
		}
		if i >= len(t) {
			return false
		}
		if seg != SingleLevel && seg != t[i] {
			return false
		}
	}

	return len(p) == len(t)
}

// IsChild reports whether topic is a strict descendant of parent
// (i.e. parent + Separator is a prefix of topic).
func IsChild(parent, topic string) bool {
	return strings.HasPrefix(topic, parent+Separator)
}
