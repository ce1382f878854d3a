package forecast

import "time"

const (
	DefaultDays = 5
	dateLayout  = "2006-01-02"
)

// Window returns the request range starting at the UTC calendar date of now
// and ending days later, both formatted YYYY-MM-DD.
func Window(now time.Time, days int) (start, end string) {
	today := now.UTC()
	return today.Format(dateLayout), today.AddDate(0, 0, days).Format(dateLayout)
}
