package bot

import (
	"fmt"

	"github.com/eliseohh/keralastatsbot/internal/config"
	"github.com/eliseohh/keralastatsbot/internal/stats"
)

const (
	statsReply = `Hope that you are doing well! Covid cases in %s,
Number of persons under observation as on %s = %d,
Number of persons discharged from home isolation as on %s = %d`

	notFoundReply    = "retry - place is not found in database!, %s!"
	unavailableReply = "sorry, statistics are unavailable right now, %s."
)

// FormatStats renders a lookup result. Missing or null counters print as 0.
func FormatStats(res stats.Result) string {
	date := res.Date.Format(config.DateLayout)
	return fmt.Sprintf(statsReply,
		res.Place,
		date, res.UnderObservation.Value,
		date, res.Discharged.Value,
	)
}
