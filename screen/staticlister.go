package screen

import (
	"regexp"
	"strconv"
)

// Window spec format: Title@X,Y,WxH
var windowSpecPattern = regexp.MustCompile(`^(.+)@(-?\d+),(-?\d+),(\d+)x(\d+)$`)

// StaticLister serves a fixed window list supplied on the command
// line. Used on platforms without a native window enumerator and for
// pinning a region during OCR tuning.
type StaticLister struct {
	windows []TableWindow
}

func NewStaticLister(windows []TableWindow) *StaticLister {
	return &StaticLister{windows: windows}
}

func (s *StaticLister) ListWindows() ([]TableWindow, error) {
	return s.windows, nil
}

// ParseWindowSpec parses one "Title@X,Y,WxH" flag value.
func ParseWindowSpec(id uint64, spec string) (TableWindow, error) {
	match := windowSpecPattern.FindStringSubmatch(spec)
	if match == nil {
		return TableWindow{}, RegionConfigError{
			Msg: "Window spec must look like Title@X,Y,WxH: " + spec,
		}
	}

	x, _ := strconv.Atoi(match[2])
	y, _ := strconv.Atoi(match[3])
	width, _ := strconv.Atoi(match[4])
	height, _ := strconv.Atoi(match[5])

	return TableWindow{
		ID:     id,
		Title:  match[1],
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	}, nil
}
