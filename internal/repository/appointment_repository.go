package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lucagreco-dev/prenota_bot/internal/model"
)

// Codici errore PostgreSQL per i vincoli sulla finestra temporale.
const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
)

type AppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

const appointmentColumns = `
	id, business_id, consultant_id, client_name, client_email, client_phone,
	service_type, start_time, duration_minutes, notes, calendar_id,
	calendar_event_id, status, created_at, updated_at
`

// Create persiste un nuovo appuntamento (stato proposed).
func (r *AppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, business_id, consultant_id, client_name, client_email, client_phone,
			service_type, start_time, duration_minutes, notes, calendar_id, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		appt.ID,
		appt.BusinessID,
		appt.ConsultantID,
		appt.ClientName,
		appt.ClientEmail,
		appt.ClientPhone,
		appt.ServiceType,
		appt.Start,
		appt.DurationMinutes,
		appt.Notes,
		appt.CalendarID,
		appt.Status,
	).Scan(&appt.CreatedAt, &appt.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}

	return nil
}

// GetByID recupera un appuntamento per id; (nil, nil) se non esiste.
func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	appt, err := scanAppointment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}
	return appt, nil
}

// UpdateStatus aggiorna lo stato dell'appuntamento.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = now()
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("appointment not found")
	}
	return nil
}

// Confirm imposta stato confirmed e id evento in un'unica scrittura. Il
// vincolo di esclusione sulle finestre confermate dello stesso calendario
// viene mappato su model.ErrWindowConflict.
func (r *AppointmentRepository) Confirm(ctx context.Context, id, calendarEventID string) error {
	query := `
		UPDATE appointments
		SET status = $1, calendar_event_id = $2, updated_at = now()
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, model.StatusConfirmed, calendarEventID, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == pgExclusionViolation || pgErr.Code == pgUniqueViolation) {
			return model.ErrWindowConflict
		}
		return fmt.Errorf("confirm appointment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("appointment not found")
	}
	return nil
}

// ListUpcoming restituisce gli appuntamenti confermati del business a
// partire dall'istante dato, in ordine di inizio.
func (r *AppointmentRepository) ListUpcoming(ctx context.Context, businessID string, from time.Time) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE business_id = $1 AND status = $2 AND start_time >= $3
		ORDER BY start_time
	`

	rows, err := r.pool.Query(ctx, query, businessID, model.StatusConfirmed, from)
	if err != nil {
		return nil, fmt.Errorf("list upcoming appointments: %w", err)
	}
	defer rows.Close()

	var appts []*model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, appt)
	}
	return appts, rows.Err()
}

// PurgeStale elimina gli appuntamenti mai arrivati a conferma più vecchi
// dell'istante dato. Restituisce il numero di righe rimosse.
func (r *AppointmentRepository) PurgeStale(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM appointments
		WHERE status IN ($1, $2, $3) AND created_at < $4
	`

	result, err := r.pool.Exec(ctx, query,
		model.StatusProposed, model.StatusValidated, model.StatusRejected, before)
	if err != nil {
		return 0, fmt.Errorf("purge stale appointments: %w", err)
	}
	return result.RowsAffected(), nil
}

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var appt model.Appointment
	err := row.Scan(
		&appt.ID,
		&appt.BusinessID,
		&appt.ConsultantID,
		&appt.ClientName,
		&appt.ClientEmail,
		&appt.ClientPhone,
		&appt.ServiceType,
		&appt.Start,
		&appt.DurationMinutes,
		&appt.Notes,
		&appt.CalendarID,
		&appt.CalendarEventID,
		&appt.Status,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &appt, nil
}
