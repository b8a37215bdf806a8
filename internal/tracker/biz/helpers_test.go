package biz

import (
	"time"
)

func fixedTime() time.Time {
	loc := time.FixedZone("CET", 3600)
	return time.Date(2024, 3, 5, 10, 8, 7, 123456789, loc)
}
