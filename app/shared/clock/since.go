package clock

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrUnrecognizedTime is returned when ParseSince cannot read its input.
var ErrUnrecognizedTime = errors.New("unrecognized time expression")

var sinceParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseSince reads a lower bound for history queries. It accepts RFC 3339
// timestamps, bare YYYY-MM-DD dates (start of that day in now's location) and
// English expressions such as "yesterday" or "3 days ago", resolved against now.
// An empty input returns the zero time.
func ParseSince(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(DayKeyLayout, input, now.Location()); err == nil {
		return t, nil
	}

	r, err := sinceParser.Parse(strings.ToLower(input), now)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrUnrecognizedTime, input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognizedTime, input)
	}
	return r.Time, nil
}
