package sqlite

import (
	"database/sql"
	"time"
)

// All timestamp columns hold UTC unix milliseconds. Converting through
// UnixMilli normalizes whatever precision a caller passed in, so a time
// written and read back compares equal with time.Equal.
func msFromTime(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func timeFromMs(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func timePtrFromNullMs(ms sql.NullInt64) *time.Time {
	if !ms.Valid {
		return nil
	}
	t := timeFromMs(ms.Int64)
	return &t
}
