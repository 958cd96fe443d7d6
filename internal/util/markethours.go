package util

import "time"

// ISTLocation returns the Asia/Kolkata location, falling back to a fixed
// UTC+5:30 zone if the tz database is unavailable.
func ISTLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.FixedZone("IST", 5*3600+1800)
	}
	return loc
}

// MarketOpen reports whether t falls inside NSE/BSE trading hours:
// 09:15–15:30 IST, Monday through Friday. Exchange holidays are not
// tracked; a refresh during a holiday just fetches an unchanged quote.
func MarketOpen(t time.Time) bool {
	ist := t.In(ISTLocation())

	switch ist.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	minutes := ist.Hour()*60 + ist.Minute()
	return minutes >= 9*60+15 && minutes <= 15*60+30
}
