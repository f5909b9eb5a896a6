package utils

import (
	"fmt"
	"regexp"
	"runtime"
	"strconv"
)

var seasonPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

func ErrorWithTrace(e error) error {
	_, file, line, _ := runtime.Caller(1)
	return fmt.Errorf("%s:%d\n\t%w", file, line, e)
}

// IsInvalidSeason reports whether season is not a "YYYY-YY" range whose
// second half is the year after the first, e.g. "2019-20" or "1999-00".
func IsInvalidSeason(season string) bool {
	m := seasonPattern.FindStringSubmatch(season)
	if m == nil {
		return true
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	return (start+1)%100 != end
}
