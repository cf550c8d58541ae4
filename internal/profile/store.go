package profile

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lucagreco-dev/prenota_bot/internal/model"
)

// Store è lo store dei profili business, in sola lettura per il motore di
// scheduling. La cache (se presente) decora questa interfaccia.
type Store interface {
	LoadProfile(ctx context.Context, businessID string) (*model.BusinessProfile, error)
}

// PostgresStore carica i profili dalle tabelle businesses, consultants e
// business_services.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore costruisce lo store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// LoadProfile carica il profilo completo del business. Restituisce (nil, nil)
// se il business non esiste.
func (s *PostgresStore) LoadProfile(ctx context.Context, businessID string) (*model.BusinessProfile, error) {
	query := `
		SELECT id, name, timezone, hours_start, hours_end, working_days, default_calendar_id
		FROM businesses
		WHERE id = $1 AND is_active = true
	`

	var profile model.BusinessProfile
	var workingDays string
	err := s.pool.QueryRow(ctx, query, businessID).Scan(
		&profile.ID,
		&profile.Name,
		&profile.Timezone,
		&profile.HoursStart,
		&profile.HoursEnd,
		&workingDays,
		&profile.DefaultCalendarID,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load business %s: %w", businessID, err)
	}

	profile.WorkingDays, err = parseWorkingDays(workingDays)
	if err != nil {
		return nil, fmt.Errorf("business %s: %w", businessID, err)
	}

	profile.Calendars, err = s.loadCalendars(ctx, businessID)
	if err != nil {
		return nil, err
	}

	profile.Services, err = s.loadServices(ctx, businessID)
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// loadCalendars carica la mappa consulente -> calendario.
func (s *PostgresStore) loadCalendars(ctx context.Context, businessID string) (map[string]string, error) {
	query := `
		SELECT id, calendar_id
		FROM consultants
		WHERE business_id = $1 AND is_active = true
	`

	rows, err := s.pool.Query(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("load consultants: %w", err)
	}
	defer rows.Close()

	calendars := make(map[string]string)
	for rows.Next() {
		var id, calendarID string
		if err := rows.Scan(&id, &calendarID); err != nil {
			return nil, fmt.Errorf("scan consultant: %w", err)
		}
		calendars[id] = calendarID
	}
	return calendars, rows.Err()
}

// loadServices carica le durate di default dei servizi.
func (s *PostgresStore) loadServices(ctx context.Context, businessID string) (map[string]int, error) {
	query := `
		SELECT service_type, duration_minutes
		FROM business_services
		WHERE business_id = $1
	`

	rows, err := s.pool.Query(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}
	defer rows.Close()

	services := make(map[string]int)
	for rows.Next() {
		var serviceType string
		var duration int
		if err := rows.Scan(&serviceType, &duration); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services[serviceType] = duration
	}
	return services, rows.Err()
}

// parseWorkingDays interpreta il formato CSV "1,2,3,4,5" (ISO, 1 = lunedì).
func parseWorkingDays(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("working_days is empty")
	}
	var days []int
	for _, part := range strings.Split(s, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || d < 1 || d > 7 {
			return nil, fmt.Errorf("invalid working day %q", part)
		}
		days = append(days, d)
	}
	return days, nil
}
