package model

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	CourseID  string        `json:"course_id"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	// Слоты, закреплённые за записью (для recorded-курсов)
	SlotIDs []string `json:"slot_ids,omitempty"`

	Course *Course `json:"course,omitempty"`
	User   *User   `json:"user,omitempty"`
}

// BookingStatistics агрегаты по записям для админки
type BookingStatistics struct {
	TotalBookings int64                 `json:"total_bookings"`
	PerCourse     []CourseBookingCount  `json:"bookings_per_course"`
	PerWeekday    []WeekdayBookingCount `json:"bookings_per_seminar_day"`
}

type CourseBookingCount struct {
	CourseTitle  string `json:"course_title"`
	BookingCount int64  `json:"booking_count"`
}

type WeekdayBookingCount struct {
	Weekday      string `json:"weekday"`
	BookingCount int64  `json:"booking_count"`
}
