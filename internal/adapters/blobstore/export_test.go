package blobstore

import "time"

// SetClock pins the signing timestamp.
func (c *Client) SetClock(now func() time.Time) { c.now = now }
