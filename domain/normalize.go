package domain

import (
	"regexp"
	"strings"
)

var (
	punctPattern     = regexp.MustCompile(`[.,']`)
	separatorPattern = regexp.MustCompile(`[\s_]+`)
	invalidPattern   = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRunPattern = regexp.MustCompile(`-+`)
)

// NormalizeMemberID derives a stable, URL-safe member ID from a display name.
//
// Every ingestion source MUST run names through this function before keying
// trades. A format mismatch between sources silently splits one member's
// history across multiple partitions, so the transformation is fixed:
// lowercase, strip periods/commas/apostrophes, collapse whitespace and
// underscores to single hyphens, drop anything else, trim hyphens.
//
//	"Nancy Pelosi"     -> "nancy-pelosi"
//	"Tommy Tuberville" -> "tommy-tuberville"
//	"Dr. John Smith"   -> "dr-john-smith"
//	"Nancy  Pelosi"    -> "nancy-pelosi"
func NormalizeMemberID(name string) string {
	if name == "" {
		return ""
	}
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = punctPattern.ReplaceAllString(normalized, "")
	normalized = separatorPattern.ReplaceAllString(normalized, "-")
	normalized = invalidPattern.ReplaceAllString(normalized, "")
	normalized = hyphenRunPattern.ReplaceAllString(normalized, "-")
	return strings.Trim(normalized, "-")
}

// AlternateMemberID returns the historical hyphen/underscore variant of an
// ID. FMP and QuiverQuant disagreed on the separator at one point and some
// partitions still carry the old format.
func AlternateMemberID(id string) string {
	if strings.Contains(id, "-") {
		return strings.ReplaceAll(id, "-", "_")
	}
	return strings.ReplaceAll(id, "_", "-")
}
