package metadata

import (
	"regexp"
	"strings"
)

var (
	extensionRx   = regexp.MustCompile(`\.[A-Za-z0-9]{2,4}$`)
	yearBracketRx = regexp.MustCompile(`[\(\[]((?:19|20)\d{2})[\)\]]`)
	// A bare year needs a leading separator so a title that IS a year
	// ("2012") survives.
	yearBareRx   = regexp.MustCompile(`[\.\-_,\s]((?:19|20)\d{2})(?:[\.\-_,\s]|$)`)
	qualityTagRx = regexp.MustCompile(`(?i)\b(1080p|720p|2160p|4K|WEBDL|BluRay|BRRip|DVDRip|HDTV|WEBRip)\b`)
	whitespaceRx = regexp.MustCompile(`\s+`)
)

// CleanTitle turns a release-style name ("The.Matrix.1999.1080p.BluRay.mkv")
// into a searchable title and an optional four-digit year. Bracketed years
// take precedence over bare ones; for bare years the last occurrence wins so
// titles that begin with a year keep it.
func CleanTitle(raw string) (title, year string) {
	s := extensionRx.ReplaceAllString(raw, "")

	if m := yearBracketRx.FindStringSubmatch(s); m != nil {
		year = m[1]
		s = strings.Replace(s, m[0], " ", 1)
	} else if all := yearBareRx.FindAllStringSubmatchIndex(s, -1); len(all) > 0 {
		last := all[len(all)-1]
		year = s[last[2]:last[3]]
		s = s[:last[2]] + s[last[3]:]
	}

	s = qualityTagRx.ReplaceAllString(s, " ")
	s = strings.NewReplacer(".", " ", "_", " ").Replace(s)
	s = whitespaceRx.ReplaceAllString(s, " ")

	return strings.Trim(s, " -"), year
}
