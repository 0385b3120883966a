package store

// Season convention, meteorological: Dec/Jan/Feb winter, Mar/Apr/May
// spring, Jun/Jul/Aug summer, Sep/Oct/Nov fall. Used identically for
// filtering and listing.
var seasonMonths = map[string][]string{
	"spring": {"03", "04", "05"},
	"summer": {"06", "07", "08"},
	"fall":   {"09", "10", "11"},
	"winter": {"12", "01", "02"},
}

// seasonOrder fixes the order seasons are listed in.
var seasonOrder = []string{"spring", "summer", "fall", "winter"}

// seasonOf maps a two-digit month to its season, or "" for bad input.
func seasonOf(month string) string {
	for season, months := range seasonMonths {
		for _, m := range months {
			if m == month {
				return season
			}
		}
	}
	return ""
}

// monthsForSeasons expands season names into the months they cover.
// Unknown season names expand to nothing, so filtering on them matches
// no events.
func monthsForSeasons(seasons []string) []string {
	var months []string
	for _, season := range seasons {
		months = append(months, seasonMonths[season]...)
	}
	return months
}
