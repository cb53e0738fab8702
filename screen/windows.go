package screen

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// TableWindow describes one poker client window on screen.
type TableWindow struct {
	ID     uint64
	Title  string
	X      int
	Y      int
	Width  int
	Height int
}

// WindowLister enumerates top-level windows. The implementation is
// OS-specific and injected at the composition point.
type WindowLister interface {
	ListWindows() ([]TableWindow, error)
}

var tableTitlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Hold'em`),
	regexp.MustCompile(`(?i)Omaha`),
	regexp.MustCompile(`(?i)Tournament`),
	regexp.MustCompile(`(?i)Zoom`),
	regexp.MustCompile(`(?i)NL Hold'em`),
	regexp.MustCompile(`(?i)PL Omaha`),
	regexp.MustCompile(`(?i)FL Hold'em`),
}

var stakesPattern = regexp.MustCompile(`\$[\d.]+/\$[\d.]+`)

// Detector finds poker table windows by title matching.
type Detector struct {
	lister WindowLister
	logger *zerolog.Logger
}

func NewDetector(lister WindowLister, logger *zerolog.Logger) *Detector {
	return &Detector{
		lister: lister,
		logger: logger,
	}
}

// FindTables returns every visible window that looks like a poker
// table. Windows smaller than 100x100 are chrome fragments, not tables.
func (d *Detector) FindTables() []TableWindow {
	windows, err := d.lister.ListWindows()
	if err != nil {
		d.logger.Error().Msgf("Unable to enumerate windows: %v", err)
		return nil
	}

	var tables []TableWindow
	for _, w := range windows {
		if w.Title == "" {
			continue
		}
		if w.Width <= 100 || w.Height <= 100 {
			continue
		}
		if IsTableTitle(w.Title) {
			tables = append(tables, w)
		}
	}
	return tables
}

func IsTableTitle(title string) bool {
	for _, pattern := range tableTitlePatterns {
		if pattern.MatchString(title) {
			return true
		}
	}
	return false
}

// ParseStakes extracts a stakes string like "$0.50/$1.00" from a table
// title.
func ParseStakes(title string) string {
	match := stakesPattern.FindString(title)
	if match == "" {
		return "Unknown"
	}
	return match
}

// ParseTableSize guesses the table size from the window title. 6-max is
// the default when the title carries no hint.
func ParseTableSize(title string) TableSize {
	lower := strings.ToLower(title)
	if strings.Contains(lower, "9-max") || strings.Contains(lower, "9 max") {
		return TableSizeNineMax
	}
	if strings.Contains(lower, "6-max") || strings.Contains(lower, "6 max") {
		return TableSizeSixMax
	}
	return TableSizeSixMax
}
