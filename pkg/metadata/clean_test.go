package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		title string
		year  string
	}{
		{
			name:  "release style name",
			raw:   "The.Matrix.1999.1080p.BluRay.mkv",
			title: "The Matrix",
			year:  "1999",
		},
		{
			name:  "parenthesized year",
			raw:   "Inception (2010).mkv",
			title: "Inception",
			year:  "2010",
		},
		{
			name:  "bracketed year",
			raw:   "Arrival [2016] 2160p.mkv",
			title: "Arrival",
			year:  "2016",
		},
		{
			name:  "underscores no year",
			raw:   "Some_Show_Name",
			title: "Some Show Name",
			year:  "",
		},
		{
			name:  "title that is a year",
			raw:   "2012.mkv",
			title: "2012",
			year:  "",
		},
		{
			name:  "year inside title kept when bracketed year present",
			raw:   "Blade Runner 2049 (2017)",
			title: "Blade Runner 2049",
			year:  "2017",
		},
		{
			name:  "bare year after year-like title",
			raw:   "1917.2019.720p.WEBRip.mp4",
			title: "1917",
			year:  "2019",
		},
		{
			name:  "quality tags are case-insensitive",
			raw:   "Heat.1995.brrip.hdtv.avi",
			title: "Heat",
			year:  "1995",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, year := CleanTitle(tt.raw)
			assert.Equal(t, tt.title, title)
			assert.Equal(t, tt.year, year)
		})
	}
}
