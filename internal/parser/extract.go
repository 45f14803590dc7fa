package parser

import "strings"

// Markers recognised inside definition lines.
const (
	markerName          = "name:"
	markerInfo          = "info[]:"
	markerTorque        = "torque:"
	markerRPMLimit      = "rpm_limit:"
	markerRatiosForward = "ratios_forward["
	markerRetarder      = "retarder:"

	kwPlaceholder = "@@kw@@"
)

// quoted returns the text between the first two double quotes.
func quoted(line string) (string, bool) {
	parts := strings.SplitN(line, `"`, 3)
	if len(parts) < 3 {
		return "", false
	}
	return parts[1], true
}

// ObjectName returns the first quoted string of line with every @@kw@@
// placeholder replaced by "kw".
func ObjectName(line string) (string, bool) {
	name, ok := quoted(line)
	if !ok {
		return "", false
	}
	return strings.ReplaceAll(name, kwPlaceholder, "kw"), true
}

// EngineRatedPower returns the leading token of an info entry such as
// `info[]: "480 @@hp@@"`. Unquoted entries fall back to the colon value.
// Single-token entries are not power ratings.
func EngineRatedPower(line string) (string, bool) {
	content, ok := quoted(line)
	if !ok {
		content, ok = ColonValue(line)
	}
	if !ok {
		return "", false
	}
	fields := strings.Fields(content)
	if len(fields) < 2 {
		return "", false
	}
	return fields[0], true
}

// ColonValue returns the trimmed value of a `key: value` line. Only the
// segment up to a following colon is kept.
func ColonValue(line string) (string, bool) {
	parts := strings.SplitN(line, ":", 3)
	if len(parts) < 2 {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// PathSegment splits a brand.model folder name. Names without exactly one
// dot, or with an empty side, are rejected.
func PathSegment(folder string) (brand, model string, ok bool) {
	if strings.Count(folder, ".") != 1 {
		return "", "", false
	}
	brand, model, _ = strings.Cut(folder, ".")
	if brand == "" || model == "" {
		return "", "", false
	}
	return brand, model, true
}
