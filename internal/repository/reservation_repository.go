package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "time"

    "github.com/go-sql-driver/mysql"

    "github.com/JasminRadadiya29/QuickCourt-sub000/internal/model"
    "github.com/JasminRadadiya29/QuickCourt-sub000/internal/schedule"
)

// MySQL server error numbers interpreted by the repository.
const (
    mysqlErrDupEntry        = 1062
    mysqlErrLockWaitTimeout = 1205
    mysqlErrDeadlock        = 1213
)

// maxAdmitAttempts bounds how often InsertConfirmed restarts a transaction
// the server chose as a deadlock victim.
const maxAdmitAttempts = 3

// ErrLockTimeout is returned when the court-day lock could not be acquired
// before the server's lock wait timeout.  It is transient.
var ErrLockTimeout = errors.New("court-day lock wait timeout")

// ReservationRepo persists reservations in MySQL.  Admission is
// serialized per court and calendar day through a row in
// court_day_locks: InsertConfirmed locks that row, re-reads overlapping
// confirmed reservations and inserts inside one transaction.  Requests
// for different courts or different days lock different rows and never
// wait on each other.  The uq_confirmed_start unique key on reservations
// backs this up for identical start times.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying sql.DB.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationColumns = `id, court_id, venue_id, user_id, booking_date, start_minute, end_minute, status, price_cents, created_at, updated_at`

// ListConfirmed returns the confirmed reservations of a court on a date,
// ordered by start time.
func (r *ReservationRepo) ListConfirmed(ctx context.Context, courtID uint64, date schedule.Date) ([]model.Reservation, error) {
    q := `SELECT ` + reservationColumns + ` FROM reservations
          WHERE court_id = ? AND booking_date = ? AND status = ?
          ORDER BY start_minute`
    rows, err := r.db.QueryContext(ctx, q, courtID, date.String(), string(model.StatusConfirmed))
    if err != nil {
        return nil, err
    }
    return collectReservations(rows)
}

// InsertConfirmed inserts res with status confirmed.  It returns
// ErrConflict when a confirmed reservation for the same court and date
// overlaps res.Range, either found by the locked re-read or reported by the
// unique key.  On success the generated ID and timestamps are set on res.
func (r *ReservationRepo) InsertConfirmed(ctx context.Context, res *model.Reservation) error {
    res.Status = model.StatusConfirmed
    var err error
    for attempt := 1; attempt <= maxAdmitAttempts; attempt++ {
        err = r.insertConfirmedOnce(ctx, res)
        if !isMySQLError(err, mysqlErrDeadlock) {
            break
        }
    }
    switch {
    case err == nil:
        return nil
    case errors.Is(err, ErrConflict):
        return err
    case isMySQLError(err, mysqlErrDupEntry):
        return ErrConflict
    case isMySQLError(err, mysqlErrLockWaitTimeout):
        return fmt.Errorf("%w: %w", ErrLockTimeout, err)
    }
    return err
}

func (r *ReservationRepo) insertConfirmedOnce(ctx context.Context, res *model.Reservation) error {
    // Make sure the lock row exists.  This runs outside the transaction so
    // concurrent first bookings of a day never deadlock on the insert.
    const ensureLock = `INSERT IGNORE INTO court_day_locks (court_id, booking_date) VALUES (?, ?)`
    if _, err := r.db.ExecContext(ctx, ensureLock, res.CourtID, res.Date.String()); err != nil {
        return err
    }

    // READ COMMITTED so the overlap query after the lock sees every
    // reservation committed by the previous lock holder.
    tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    const lock = `SELECT court_id FROM court_day_locks WHERE court_id = ? AND booking_date = ? FOR UPDATE`
    var locked uint64
    if err := tx.QueryRowContext(ctx, lock, res.CourtID, res.Date.String()).Scan(&locked); err != nil {
        return err
    }

    const overlap = `SELECT COUNT(*) FROM reservations
                     WHERE court_id = ? AND booking_date = ? AND status = ?
                       AND start_minute < ? AND end_minute > ?`
    var n int
    if err := tx.QueryRowContext(ctx, overlap,
        res.CourtID, res.Date.String(), string(model.StatusConfirmed),
        res.Range.End().Minutes(), res.Range.Start().Minutes(),
    ).Scan(&n); err != nil {
        return err
    }
    if n > 0 {
        return ErrConflict
    }

    const ins = `INSERT INTO reservations (court_id, venue_id, user_id, booking_date, start_minute, end_minute, status, price_cents)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    result, err := tx.ExecContext(ctx, ins,
        res.CourtID, res.VenueID, res.UserID, res.Date.String(),
        res.Range.Start().Minutes(), res.Range.End().Minutes(),
        string(res.Status), res.PriceCents,
    )
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }

    // Query back the timestamps filled in by the database.
    const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
    var createdAt, updatedAt time.Time
    if err := tx.QueryRowContext(ctx, sel, id).Scan(&createdAt, &updatedAt); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    res.ID = uint64(id)
    res.CreatedAt = createdAt
    res.UpdatedAt = updatedAt
    return nil
}

// GetByID returns a reservation or ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
    q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
    res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrReservationNotFound
        }
        return nil, err
    }
    return res, nil
}

// ListByUser returns every reservation of a user, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
    q := `SELECT ` + reservationColumns + ` FROM reservations
          WHERE user_id = ?
          ORDER BY booking_date DESC, start_minute DESC, id DESC`
    rows, err := r.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    return collectReservations(rows)
}

// Cancel transitions a confirmed reservation to cancelled and returns the
// updated row.  It returns ErrReservationNotFound for unknown IDs and
// ErrConflict when the reservation is not confirmed anymore.
func (r *ReservationRepo) Cancel(ctx context.Context, id uint64) (*model.Reservation, error) {
    const upd = `UPDATE reservations SET status = ? WHERE id = ? AND status = ?`
    result, err := r.db.ExecContext(ctx, upd, string(model.StatusCancelled), id, string(model.StatusConfirmed))
    if err != nil {
        return nil, err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return nil, err
    }
    res, err := r.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    if n == 0 {
        return nil, ErrConflict
    }
    return res, nil
}

func collectReservations(rows *sql.Rows) ([]model.Reservation, error) {
    defer rows.Close()
    out := []model.Reservation{}
    for rows.Next() {
        res, err := scanReservation(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *res)
    }
    return out, rows.Err()
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
    var (
        res        model.Reservation
        day        time.Time
        start, end int
        status     string
    )
    err := row.Scan(&res.ID, &res.CourtID, &res.VenueID, &res.UserID, &day,
        &start, &end, &status, &res.PriceCents, &res.CreatedAt, &res.UpdatedAt)
    if err != nil {
        return nil, err
    }
    rng, err := schedule.RangeFromMinutes(start, end)
    if err != nil {
        return nil, fmt.Errorf("reservation %d has invalid range: %w", res.ID, err)
    }
    res.Date = schedule.DateOf(day)
    res.Range = rng
    res.Status = model.ReservationStatus(status)
    return &res, nil
}

func isMySQLError(err error, number uint16) bool {
    var me *mysql.MySQLError
    return errors.As(err, &me) && me.Number == number
}
