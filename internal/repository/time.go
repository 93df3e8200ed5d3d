package repository

import "time"

// utcPtr converts t to UTC so timestamps are stored consistently
func utcPtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}
