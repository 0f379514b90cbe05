package timeutil

import "time"

func NowUnix() int64 {
	return time.Now().Unix()
}

// DaysAgoUnix is the unix time days before now.
func DaysAgoUnix(now time.Time, days int) int64 {
	return now.AddDate(0, 0, -days).Unix()
}
