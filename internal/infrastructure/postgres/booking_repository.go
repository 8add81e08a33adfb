package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/booking"
	"github.com/GonzaloPontnau/FitFlow-TP-DDS/internal/domain/transaction"
)

type bookingRow struct {
	ID          string     `db:"id"`
	MemberID    string     `db:"member_id"`
	ClassID     string     `db:"class_id"`
	Status      string     `db:"status"`
	BookedAt    time.Time  `db:"booked_at"`
	CancelledAt *time.Time `db:"cancelled_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

type BookingRepository struct{ db *sqlx.DB }

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, member_id, class_id, status, booked_at, cancelled_at, created_at, updated_at`

func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクション")
	}
	query := `INSERT INTO bookings (member_id, class_id, status, booked_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query,
		b.MemberID, b.ClassID, string(b.Status), b.BookedAt, b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID); err != nil {
		// 部分ユニークインデックス（有効な予約は会員×クラスで1件）への違反
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return booking.ErrDuplicateBooking
		}
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	var row bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return r.toEntity(&row), nil
}

func (r *BookingRepository) GetLiveByMemberAndClass(ctx context.Context, memberID, classID string) (*booking.Booking, error) {
	var row bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE member_id = $1 AND class_id = $2 AND status = 'confirmed' AND cancelled_at IS NULL`
	if err := r.db.GetContext(ctx, &row, query, memberID, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return r.toEntity(&row), nil
}

func (r *BookingRepository) CountLiveByClass(ctx context.Context, classID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM bookings WHERE class_id = $1 AND status = 'confirmed' AND cancelled_at IS NULL`
	if err := r.db.GetContext(ctx, &count, query, classID); err != nil {
		return 0, fmt.Errorf("予約件数取得に失敗: %w", err)
	}
	return count, nil
}

func (r *BookingRepository) CountLiveByClassTx(ctx context.Context, tx transaction.Tx, classID string) (int, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return 0, fmt.Errorf("無効なトランザクション")
	}
	var count int
	query := `SELECT COUNT(*) FROM bookings WHERE class_id = $1 AND status = 'confirmed' AND cancelled_at IS NULL`
	if err := sqlxTx.GetContext(ctx, &count, query, classID); err != nil {
		return 0, fmt.Errorf("予約件数取得に失敗: %w", err)
	}
	return count, nil
}

func (r *BookingRepository) ListByMember(ctx context.Context, memberID string, limit, offset int) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE member_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, memberID, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	return r.toEntities(rows), nil
}

func (r *BookingRepository) ListByClass(ctx context.Context, classID string) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE class_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &rows, query, classID); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	return r.toEntities(rows), nil
}

func (r *BookingRepository) Update(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("無効なトランザクション")
	}
	query := `UPDATE bookings SET status = $1, cancelled_at = $2, updated_at = $3 WHERE id = $4`
	result, err := sqlxTx.ExecContext(ctx, query, string(b.Status), b.CancelledAt, b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("予約更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) toEntities(rows []bookingRow) []*booking.Booking {
	result := make([]*booking.Booking, len(rows))
	for i := range rows {
		result[i] = r.toEntity(&rows[i])
	}
	return result
}

func (r *BookingRepository) toEntity(row *bookingRow) *booking.Booking {
	return &booking.Booking{
		ID: row.ID, MemberID: row.MemberID, ClassID: row.ClassID,
		Status: booking.Status(row.Status), BookedAt: row.BookedAt,
		CancelledAt: row.CancelledAt, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt,
	}
}

var _ booking.Repository = (*BookingRepository)(nil)
