package repository

import (
	"context"
	"fmt"

	"github.com/seminarhub/backend/internal/model"
	"github.com/seminarhub/backend/internal/repository/base"
)

type BookingRepository struct {
	q base.Querier
}

func NewBookingRepository(q base.Querier) *BookingRepository {
	return &BookingRepository{q: q}
}

// Create создаёт запись на курс вместе с закреплёнными слотами
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (id, user_id, course_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query, booking.ID, booking.UserID, booking.CourseID, booking.Status).
		Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	for _, slotID := range booking.SlotIDs {
		_, err := r.q.Exec(ctx,
			`INSERT INTO booking_slots (booking_id, slot_id) VALUES ($1, $2)`,
			booking.ID, slotID,
		)
		if err != nil {
			return fmt.Errorf("assign booking slot: %w", err)
		}
	}

	return nil
}

// GetByID получает запись по ID
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	query := `
		SELECT id, user_id, course_id, status, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	var booking model.Booking
	err := r.q.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.CourseID,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	slotIDs, err := r.getSlotIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	booking.SlotIDs = slotIDs

	return &booking, nil
}

func (r *BookingRepository) getSlotIDs(ctx context.Context, bookingID string) ([]string, error) {
	rows, err := r.q.Query(ctx,
		`SELECT slot_id FROM booking_slots WHERE booking_id = $1`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking slots: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan booking slot: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// GetByUserID получает все записи пользователя, новые первыми
func (r *BookingRepository) GetByUserID(ctx context.Context, userID string) ([]*model.Booking, error) {
	query := `
		SELECT id, user_id, course_id, status, created_at, updated_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get bookings by user: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		var booking model.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.UserID,
			&booking.CourseID,
			&booking.Status,
			&booking.CreatedAt,
			&booking.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	return bookings, nil
}

// GetBookedSlotIDs возвращает слоты семинарского дня, уже занятые
// подтверждёнными записями пользователя. Учитываются и слоты модулей
// live-курсов, и слоты, выбранные при записи на recorded-курс.
func (r *BookingRepository) GetBookedSlotIDs(ctx context.Context, userID, seminarDayID string) (map[string]bool, error) {
	query := `
		SELECT s.id
		FROM bookings b
		JOIN courses c ON c.id = b.course_id
		JOIN course_modules m ON m.course_id = c.id
		JOIN slots s ON s.id = m.slot_id
		WHERE b.user_id = $1 AND b.status = 'confirmed' AND c.seminar_day_id = $2
		UNION
		SELECT bs.slot_id
		FROM bookings b
		JOIN courses c ON c.id = b.course_id
		JOIN booking_slots bs ON bs.booking_id = b.id
		WHERE b.user_id = $1 AND b.status = 'confirmed' AND c.seminar_day_id = $2
	`

	rows, err := r.q.Query(ctx, query, userID, seminarDayID)
	if err != nil {
		return nil, fmt.Errorf("get booked slots: %w", err)
	}
	defer rows.Close()

	booked := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan booked slot: %w", err)
		}
		booked[id] = true
	}

	return booked, nil
}

// UpdateStatus обновляет статус записи
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = now()
		WHERE id = $2
	`

	tag, err := r.q.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("booking not found")
	}

	return nil
}

// Statistics собирает агрегаты по записям
func (r *BookingRepository) Statistics(ctx context.Context) (*model.BookingStatistics, error) {
	stats := &model.BookingStatistics{}

	err := r.q.QueryRow(ctx, `SELECT count(*) FROM bookings`).Scan(&stats.TotalBookings)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT c.title, count(b.id) AS booking_count
		FROM bookings b
		JOIN courses c ON c.id = b.course_id
		GROUP BY c.id, c.title
		ORDER BY booking_count DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("bookings per course: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row model.CourseBookingCount
		if err := rows.Scan(&row.CourseTitle, &row.BookingCount); err != nil {
			return nil, fmt.Errorf("scan course count: %w", err)
		}
		stats.PerCourse = append(stats.PerCourse, row)
	}
	rows.Close()

	rows, err = r.q.Query(ctx, `
		SELECT d.weekday, count(b.id) AS booking_count
		FROM bookings b
		JOIN courses c ON c.id = b.course_id
		JOIN seminar_days d ON d.id = c.seminar_day_id
		GROUP BY d.id, d.weekday
		ORDER BY booking_count DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("bookings per seminar day: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row model.WeekdayBookingCount
		if err := rows.Scan(&row.Weekday, &row.BookingCount); err != nil {
			return nil, fmt.Errorf("scan weekday count: %w", err)
		}
		stats.PerWeekday = append(stats.PerWeekday, row)
	}

	return stats, nil
}
