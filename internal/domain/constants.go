package domain

// Default configuration values
const (
	DefaultGranularityMinutes      = 30
	DefaultAdvanceBookingDays      = 0 // 0 = unlimited
	DefaultMinBookingNoticeMinutes = 0
)

// Business validation constants
const (
	MinGranularityMinutes   = 5
	MaxGranularityMinutes   = 240
	MinAdvanceBookingDays   = 0
	MaxAdvanceBookingDays   = 365 // 1 year
	MinBookingNoticeMinutes = 0
	MaxBookingNoticeMinutes = 10080 // 1 week
	MaxNotesLength          = 500
)

// Day boundaries in minutes since midnight
const (
	DayStartMinutes  = 0
	DayLengthMinutes = 24 * 60
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses статусы, которые участвуют в проверке пересечений
var ActiveStatuses = []AppointmentStatus{
	StatusScheduled,
	StatusConfirmed,
}
