package repository

import "time"

// IST is India Standard Time. It has no daylight saving, so a fixed zone
// avoids depending on the host tz database.
var IST = time.FixedZone("IST", 5*3600+30*60)

// TradingDay returns the NSE trading day (YYYY-MM-DD) for a timestamp:
// the calendar date in IST.
func TradingDay(ts time.Time) string {
	return ts.In(IST).Format("2006-01-02")
}

// TradingDayNow returns the trading day for the current moment.
func TradingDayNow() string {
	return TradingDay(time.Now())
}

// MarketOpen reports whether ts falls inside the NSE cash session,
// 09:15 to 15:30 IST on weekdays. Exchange holidays are not modelled.
func MarketOpen(ts time.Time) bool {
	t := ts.In(IST)
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	mins := t.Hour()*60 + t.Minute()
	return mins >= 9*60+15 && mins < 15*60+30
}
