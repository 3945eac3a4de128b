package schedule

import (
	"sort"
	"time"

	"github.com/handiism/djb-downloader/internal/model"
)

// Expand turns recurring show rules into the concrete list of airings to
// download, ordered by date ascending.
//
// Each rule's calendar range is walked day by day, selecting the dates
// whose weekday matches; every match becomes one Airing with its segment
// list built from the rule's hours (an hour 0 segment lands on the next
// calendar day, see model.NewSegment). All rules' airings are merged and
// stable-sorted by date, so when two rules produce the same date the
// earlier rule's airing comes first.
//
// A non-zero resumeFrom drops every airing dated before it; the cutoff
// date itself is kept. This is the sole resume mechanism, so restarting
// an interrupted batch is just re-running with resumeFrom set to the
// first unfinished date.
//
// A rule with no hours or no weekday match in range contributes nothing.
// Expansion is deterministic and has no side effects.
//
// Example usage:
//
//	airings := schedule.Expand(settings.Schedules, cfg, time.Time{})
//	for _, airing := range airings {
//	    fmt.Println(airing.DateString(), len(airing.Segments), "segments")
//	}
func Expand(rules []model.Schedule, cfg *model.PathConfig, resumeFrom time.Time) []*model.Airing {
	var airings []*model.Airing
	for _, rule := range rules {
		airings = append(airings, expandRule(rule, cfg, resumeFrom)...)
	}

	sort.SliceStable(airings, func(i, j int) bool {
		return airings[i].Date.Before(airings[j].Date)
	})
	return airings
}

// expandRule walks one rule's date range and emits its matching airings.
func expandRule(rule model.Schedule, cfg *model.PathConfig, resumeFrom time.Time) []*model.Airing {
	if len(rule.Hours) == 0 {
		return nil
	}

	var airings []*model.Airing
	for cur := rule.Start.Time; !cur.After(rule.End.Time); cur = cur.AddDate(0, 0, 1) {
		if !rule.Weekday.Matches(cur) {
			continue
		}
		if !resumeFrom.IsZero() && cur.Before(resumeFrom) {
			continue
		}
		airings = append(airings, model.NewAiring(cur, rule.Hours, cfg))
	}
	return airings
}
