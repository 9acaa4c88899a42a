package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var (
	// pastMarker matches phrases that explicitly point backwards in time.
	pastMarker = regexp.MustCompile(`(?i)\b(ago|last|yesterday|previous)\b`)

	// sameDayMarker matches phrases pinned to the current day.
	sameDayMarker = regexp.MustCompile(`(?i)\b(today|tonight)\b`)

	dayAfterTomorrow = regexp.MustCompile(`(?i)\b(?:the\s+)?day\s+after\s+tomorrow\b`)

	// tonightAt matches "tonight at 8" where the hour carries no meridiem.
	tonightAt = regexp.MustCompile(`(?i)\btonight(?:\s+at)?\s+(\d{1,2})(?::(\d{2}))?(?:\s*([ap])\.?m\.?)?\b`)

	ordinal   = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)\b`)
	meridiem  = regexp.MustCompile(`(?i)\b([ap])\.m\.?`)
	separator = regexp.MustCompile(`[\s,]+`)
	wordSplit = regexp.MustCompile(`[^a-z0-9]+`)
)

// fillers are words that may surround a date expression without changing it.
var fillers = map[string]bool{
	"at": true, "on": true, "the": true, "of": true, "by": true,
	"around": true, "about": true, "for": true, "from": true, "starting": true,
}

// isoLayouts are matched against the phrase as written.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

type dateLayout struct {
	layout   string
	hasYear  bool
	hasMonth bool
}

// dateLayouts are the calendar date forms accepted in absolute phrases.
// Day-only layouts are used when the day carried an ordinal suffix.
var dateLayouts = []dateLayout{
	{"2006-01-02", true, true},
	{"1/2/2006", true, true},
	{"Jan 2 2006", true, true},
	{"January 2 2006", true, true},
	{"2 Jan 2006", true, true},
	{"2 January 2006", true, true},
	{"1/2", false, true},
	{"Jan 2", false, true},
	{"January 2", false, true},
	{"2 Jan", false, true},
	{"2 January", false, true},
}

var dayOnlyLayouts = []dateLayout{
	{"2", false, false},
}

var timeLayouts = []string{
	"15:04",
	"3:04PM",
	"3:04 PM",
	"3PM",
	"3 PM",
}

// Parser resolves date and time phrases in a fixed location.
type Parser struct {
	w   *when.Parser
	loc *time.Location
}

// New creates a Parser evaluating phrases in loc. A nil loc means UTC.
func New(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{w: w, loc: loc}
}

// Location returns the location phrases are evaluated in.
func (p *Parser) Location() *time.Location {
	return p.loc
}

// Parse resolves phrase relative to now. It reports false when the phrase
// contains no recognizable date or time, or when part of it is left over
// after the date expression has been matched.
//
// Future occurrences are preferred: a relative match earlier than now is
// moved forward by a day, a week or a year, whichever is the smallest step
// that fits. Phrases that explicitly refer to the past ("2 days ago",
// "last friday") or to the current day ("today at 9am") are kept as is.
func (p *Parser) Parse(phrase string, now time.Time) (time.Time, bool) {
	phrase = clean(phrase)
	if phrase == "" {
		return time.Time{}, false
	}
	now = now.In(p.loc)

	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, phrase, p.loc); err == nil {
			return t.In(p.loc), true
		}
	}
	if t, ok := p.parseAbsolute(phrase, now); ok {
		return t, true
	}
	return p.parseRelative(phrase, now)
}

// parseAbsolute handles calendar dates such as "Oct 25, 2026 3:00 PM",
// "10/25/2026 at 3pm" or "the 25th at 3pm". Missing year or month are taken
// from now and advanced when the result would lie in the past.
func (p *Parser) parseAbsolute(phrase string, now time.Time) (time.Time, bool) {
	s := meridiem.ReplaceAllString(phrase, "${1}m")
	hadOrdinal := ordinal.MatchString(s)
	s = ordinal.ReplaceAllString(s, "$1")

	var words []string
	for _, w := range separator.Split(s, -1) {
		if w != "" && !fillers[strings.ToLower(w)] {
			words = append(words, w)
		}
	}
	s = strings.ToUpper(strings.Join(words, " "))
	if s == "" {
		return time.Time{}, false
	}

	layouts := dateLayouts
	if hadOrdinal {
		layouts = append(append([]dateLayout{}, dateLayouts...), dayOnlyLayouts...)
	}

	for _, d := range layouts {
		candidates := []string{d.layout}
		for _, tl := range timeLayouts {
			candidates = append(candidates, d.layout+" "+tl, tl+" "+d.layout)
		}
		for _, layout := range candidates {
			t, err := time.ParseInLocation(layout, s, p.loc)
			if err != nil {
				continue
			}
			return resolveDate(t, d, now)
		}
	}
	return time.Time{}, false
}

// resolveDate fills the fields a layout left out and moves the result to
// the next matching month or year when it would otherwise be in the past.
func resolveDate(t time.Time, d dateLayout, now time.Time) (time.Time, bool) {
	if d.hasYear {
		return t, true
	}
	loc := now.Location()
	day := t.Day()

	if !d.hasMonth {
		first := time.Date(now.Year(), now.Month(), 1, t.Hour(), t.Minute(), 0, 0, loc)
		for i := 0; i < 12; i++ {
			month := first.AddDate(0, i, 0)
			c := time.Date(month.Year(), month.Month(), day, t.Hour(), t.Minute(), 0, 0, loc)
			if c.Day() == day && !c.Before(now) {
				return c, true
			}
		}
		return time.Time{}, false
	}

	for year := now.Year(); year <= now.Year()+4; year++ {
		c := time.Date(year, t.Month(), day, t.Hour(), t.Minute(), 0, 0, loc)
		if c.Day() == day && !c.Before(now) {
			return c, true
		}
	}
	return time.Time{}, false
}

// parseRelative runs the natural language rules. The match has to cover the
// whole phrase apart from filler words.
func (p *Parser) parseRelative(phrase string, now time.Time) (time.Time, bool) {
	extraDays := 0
	if dayAfterTomorrow.MatchString(phrase) {
		phrase = dayAfterTomorrow.ReplaceAllString(phrase, "tomorrow")
		extraDays = 1
	}
	phrase = tonightAt.ReplaceAllStringFunc(phrase, rewriteTonight)

	res, err := p.w.Parse(phrase, now)
	if err != nil || res == nil {
		return time.Time{}, false
	}
	if !covers(phrase, res.Index, res.Text) {
		return time.Time{}, false
	}

	t := res.Time.In(p.loc).AddDate(0, 0, extraDays)
	if t.Before(now) && !pastMarker.MatchString(phrase) && !sameDayMarker.MatchString(phrase) {
		t = rollForward(t, now)
	}
	return t, true
}

// rewriteTonight turns "tonight at 8" into "today at 8pm".
func rewriteTonight(match string) string {
	m := tonightAt.FindStringSubmatch(match)
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour > 23 {
		return match
	}
	suffix := "pm"
	switch {
	case strings.EqualFold(m[3], "a"):
		suffix = "am"
	case hour > 12:
		return "today at " + strconv.Itoa(hour) + ":" + minutesOrZero(m[2])
	}
	if m[2] != "" {
		return "today at " + strconv.Itoa(hour) + ":" + m[2] + suffix
	}
	return "today at " + strconv.Itoa(hour) + suffix
}

func minutesOrZero(m string) string {
	if m == "" {
		return "00"
	}
	return m
}

// covers reports whether everything outside phrase[index:index+len(text)]
// is filler.
func covers(phrase string, index int, text string) bool {
	if index < 0 || index+len(text) > len(phrase) {
		return false
	}
	rest := phrase[:index] + " " + phrase[index+len(text):]
	for _, w := range wordSplit.Split(strings.ToLower(rest), -1) {
		if w != "" && !fillers[w] {
			return false
		}
	}
	return true
}

func rollForward(t, now time.Time) time.Time {
	behind := now.Sub(t)
	switch {
	case behind < 24*time.Hour:
		return t.AddDate(0, 0, 1)
	case behind < 7*24*time.Hour:
		return t.AddDate(0, 0, 7)
	default:
		return t.AddDate(1, 0, 0)
	}
}

// clean strips the quoting and punctuation models tend to wrap answers in.
func clean(phrase string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(phrase), "\"'`."))
}
