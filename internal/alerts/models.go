package alerts

import (
	"strings"
	"time"
)

type Type string

const (
	TypeSOS           Type = "SOS"
	TypeZoneViolation Type = "ZONE_VIOLATION"
	TypeOffline       Type = "OFFLINE"
	TypeSafetyScore   Type = "SAFETY_SCORE"
	TypeMedical       Type = "MEDICAL"
)

func (t Type) Valid() bool {
	switch t {
	case TypeSOS, TypeZoneViolation, TypeOffline, TypeSafetyScore, TypeMedical:
		return true
	}
	return false
}

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Status moves forward only: active, acknowledged, investigating, resolved.
type Status string

const (
	StatusActive        Status = "active"
	StatusAcknowledged  Status = "acknowledged"
	StatusInvestigating Status = "investigating"
	StatusResolved      Status = "resolved"
)

var statusRank = map[Status]int{
	StatusActive:        0,
	StatusAcknowledged:  1,
	StatusInvestigating: 2,
	StatusResolved:      3,
}

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	_, ok := statusRank[st]
	return st, ok
}

// canMove reports whether an alert in status from may be set to status to.
// Steps may be skipped but never undone.
func canMove(from, to Status) bool {
	return statusRank[to] >= statusRank[from]
}

type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

type Alert struct {
	ID              int64      `json:"id"`
	Type            Type       `json:"type"`
	Emergency       string     `json:"emergency,omitempty"`
	TouristID       string     `json:"touristId"`
	TouristName     string     `json:"touristName,omitempty"`
	DeviceID        string     `json:"deviceId,omitempty"`
	Message         string     `json:"message"`
	Location        Location   `json:"location"`
	Timestamp       time.Time  `json:"timestamp"`
	Status          Status     `json:"status"`
	Priority        Priority   `json:"priority"`
	AssignedOfficer string     `json:"assignedOfficer,omitempty"`
	AcknowledgedAt  *time.Time `json:"acknowledgedAt,omitempty"`
	ResolvedAt      *time.Time `json:"resolvedAt,omitempty"`
}

// SOSRequest is what a tourist sends when raising an alarm. Coordinates are
// optional; without them the device's last tracked fix is used.
type SOSRequest struct {
	Emergency   string   `json:"emergency"`
	Message     string   `json:"message"`
	TouristName string   `json:"touristName"`
	DeviceID    string   `json:"deviceId"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Address     string   `json:"address"`
}

// Filter selects alerts the way the police alert panel does: all, active,
// critical, unresolved, or an alert type.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterActive     Filter = "active"
	FilterCritical   Filter = "critical"
	FilterUnresolved Filter = "unresolved"
)

// ParseFilter accepts the named filters case-insensitively and alert types in
// their upper case form. An empty value means all.
func ParseFilter(s string) (Filter, bool) {
	s = strings.TrimSpace(s)
	switch f := Filter(strings.ToLower(s)); f {
	case "", FilterAll:
		return FilterAll, true
	case FilterActive, FilterCritical, FilterUnresolved:
		return f, true
	}
	if t := Type(strings.ToUpper(s)); t.Valid() {
		return Filter(t), true
	}
	return "", false
}

func (f Filter) Matches(a Alert) bool {
	switch f {
	case "", FilterAll:
		return true
	case FilterActive:
		return a.Status == StatusActive
	case FilterCritical:
		return a.Priority == PriorityCritical
	case FilterUnresolved:
		return a.Status != StatusResolved
	default:
		return a.Type == Type(f)
	}
}

// Summary holds the counters shown above the alert list.
type Summary struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	Critical   int `json:"critical"`
	Unresolved int `json:"unresolved"`
}
