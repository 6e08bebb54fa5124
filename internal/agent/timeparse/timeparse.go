package timeparse

import (
	"fmt"
	"regexp"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/pollenai/assistant/internal/agent/model"
)

// Extractor parses natural-language temporal expressions ("tomorrow at 3pm",
// "next Tuesday") into timezone-aware timestamps in a single configured zone.
// A text with no temporal expression yields ok=false; that is an expected
// outcome, not an error.
type Extractor struct {
	parser *when.Parser
	loc    *time.Location
	now    func() time.Time
}

func NewExtractor(cfg model.ExtractorConfig) (*Extractor, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load extractor timezone %q: %w", cfg.Timezone, err)
	}

	parser := when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)

	return &Extractor{
		parser: parser,
		loc:    loc,
		now:    time.Now,
	}, nil
}

// Extract returns the parsed timestamp in the configured zone, or ok=false
// when the text contains no recognizable temporal expression.
func (e *Extractor) Extract(text string) (time.Time, bool) {
	base := e.now().In(e.loc)

	r, err := e.parser.Parse(text, base)
	if err != nil || r == nil {
		return time.Time{}, false
	}

	t := r.Time.In(e.loc)

	// Prefer the next future occurrence: an unqualified clock time earlier
	// today resolves to tomorrow, an unqualified weekday to the coming week
	// and an unqualified month-day to next year. Only dates carrying an
	// explicit year are taken literally, past or not.
	if t.Before(base) && !hasExplicitYear(r.Text) {
		rolled := t
		for i := 0; i < 7 && rolled.Before(base); i++ {
			rolled = rolled.Add(24 * time.Hour)
		}
		if rolled.Before(base) {
			rolled = t.AddDate(1, 0, 0)
		}
		t = rolled
	}

	return t, true
}

var yearPattern = regexp.MustCompile(`\b\d{4}\b`)

func hasExplicitYear(matched string) bool {
	return yearPattern.MatchString(matched)
}

// ExtractISO is Extract formatted as ISO-8601 with UTC offset.
func (e *Extractor) ExtractISO(text string) (string, bool) {
	t, ok := e.Extract(text)
	if !ok {
		return "", false
	}
	return t.Format(time.RFC3339), true
}
