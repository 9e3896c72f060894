package chart

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"birthchart-server/internal/shared/database"
	"birthchart-server/internal/shared/errors"
)

// SavedChart is a user's stored birth data. The chart itself is recomputed
// on read.
type SavedChart struct {
	ID          int         `json:"id"`
	UserID      int         `json:"user_id"`
	Label       string      `json:"label"`
	Moment      Moment      `json:"moment"`
	City        string      `json:"city"`
	HouseSystem HouseSystem `json:"house_system"`
	CreatedAt   time.Time   `json:"created_at"`
}

type SavedChartStore interface {
	Create(ctx context.Context, sc *SavedChart) error
	ListByUser(ctx context.Context, userID int) ([]SavedChart, error)
	Get(ctx context.Context, userID, id int) (*SavedChart, error)
	Delete(ctx context.Context, userID, id int) error
}

type Repository struct {
	db database.Executor
}

func NewRepository(db database.Executor) *Repository {
	return &Repository{db: db}
}

const savedChartColumns = `id, user_id, label, year, month, day, hour, minute, tz_offset, city, house_system, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSavedChart(row rowScanner) (*SavedChart, error) {
	var sc SavedChart
	var system string
	err := row.Scan(
		&sc.ID,
		&sc.UserID,
		&sc.Label,
		&sc.Moment.Year,
		&sc.Moment.Month,
		&sc.Moment.Day,
		&sc.Moment.Hour,
		&sc.Moment.Minute,
		&sc.Moment.TZOffset,
		&sc.City,
		&system,
		&sc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if sc.HouseSystem, err = ParseHouseSystem(system); err != nil {
		return nil, fmt.Errorf("saved chart %d: %w", sc.ID, err)
	}
	return &sc, nil
}

func (r *Repository) Create(ctx context.Context, sc *SavedChart) error {
	logger := slog.With(
		"component", "chart_repository",
		"operation", "create",
		"user_id", sc.UserID,
	)

	query := `
		INSERT INTO saved_charts (user_id, label, year, month, day, hour, minute, tz_offset, city, house_system)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	m := sc.Moment
	err := r.db.QueryRowContext(ctx, query,
		sc.UserID, sc.Label, m.Year, m.Month, m.Day, m.Hour, m.Minute, m.TZOffset, sc.City, sc.HouseSystem.String(),
	).Scan(&sc.ID, &sc.CreatedAt)
	if err != nil {
		logger.Error("Failed to create saved chart", "error", err)
		return fmt.Errorf("failed to create saved chart: %w", err)
	}

	logger.Info("Saved chart created", "chart_id", sc.ID)
	return nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int) ([]SavedChart, error) {
	logger := slog.With("component", "chart_repository", "operation", "list_by_user", "user_id", userID)

	query := `SELECT ` + savedChartColumns + ` FROM saved_charts WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		logger.Error("Failed to query saved charts", "error", err)
		return nil, fmt.Errorf("failed to query saved charts: %w", err)
	}
	defer rows.Close()

	charts := []SavedChart{}
	for rows.Next() {
		sc, err := scanSavedChart(rows)
		if err != nil {
			logger.Error("Failed to scan saved chart row", "error", err)
			return nil, fmt.Errorf("failed to scan saved chart: %w", err)
		}
		charts = append(charts, *sc)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating saved charts: %w", err)
	}

	logger.Debug("Saved charts retrieved", "count", len(charts))
	return charts, nil
}

func (r *Repository) Get(ctx context.Context, userID, id int) (*SavedChart, error) {
	logger := slog.With("component", "chart_repository", "operation", "get", "user_id", userID, "chart_id", id)

	query := `SELECT ` + savedChartColumns + ` FROM saved_charts WHERE id = $1 AND user_id = $2`

	sc, err := scanSavedChart(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.WrapNotFound(fmt.Sprintf("saved chart %d not found", id), ErrChartNotFound)
		}
		logger.Error("Database error getting saved chart", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	return sc, nil
}

func (r *Repository) Delete(ctx context.Context, userID, id int) error {
	logger := slog.With("component", "chart_repository", "operation", "delete", "user_id", userID, "chart_id", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM saved_charts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		logger.Error("Failed to delete saved chart", "error", err)
		return fmt.Errorf("failed to delete saved chart: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return errors.WrapNotFound(fmt.Sprintf("saved chart %d not found", id), ErrChartNotFound)
	}

	logger.Info("Saved chart deleted")
	return nil
}
