package services

import "sync/atomic"

// Stats counts finalization and delivery outcomes for the operator health view
type Stats struct {
	finalized       atomic.Int64
	duplicates      atomic.Int64
	alertsDelivered atomic.Int64
	alertsFailed    atomic.Int64
}

// StatsSnapshot is a point-in-time copy of Stats
type StatsSnapshot struct {
	Finalized       int64 `json:"finalized"`
	Duplicates      int64 `json:"duplicate_submissions"`
	AlertsDelivered int64 `json:"alerts_delivered"`
	AlertsFailed    int64 `json:"alerts_failed"`
}

// Snapshot returns the current counter values
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Finalized:       s.finalized.Load(),
		Duplicates:      s.duplicates.Load(),
		AlertsDelivered: s.alertsDelivered.Load(),
		AlertsFailed:    s.alertsFailed.Load(),
	}
}
