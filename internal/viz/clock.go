package viz

import "time"

// ClockZone is the zone the panel clock shows.
const ClockZone = "Asia/Kolkata"

var clockLocation = loadClockLocation()

func loadClockLocation() *time.Location {
	loc, err := time.LoadLocation(ClockZone)
	if err != nil {
		// No zoneinfo on this host; IST has no daylight saving.
		return time.FixedZone("IST", 5*3600+30*60)
	}
	return loc
}

// LocalClock formats now as HH:MM:SS in the clock zone.
func LocalClock(now time.Time) string {
	return now.In(clockLocation).Format("15:04:05")
}
