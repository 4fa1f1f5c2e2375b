package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DB is the subset of pgxpool.Pool the repository uses; pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPool connects to Postgres and verifies the connection.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info().Msg("Database connection established")
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS query_history (
	id                BIGSERIAL PRIMARY KEY,
	query             TEXT NOT NULL,
	place_name        VARCHAR(255),
	user_ip           VARCHAR(50),
	has_weather       BOOLEAN NOT NULL DEFAULT FALSE,
	has_places        BOOLEAN NOT NULL DEFAULT FALSE,
	weather_temp      DOUBLE PRECISION,
	weather_rain_prob DOUBLE PRECISION,
	places_count      INTEGER NOT NULL DEFAULT 0,
	error             VARCHAR(100),
	success           BOOLEAN NOT NULL DEFAULT TRUE,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_query_history_place_name ON query_history (place_name);
CREATE INDEX IF NOT EXISTS idx_query_history_created_at ON query_history (created_at);
`

// InitSchema creates the history table if it does not exist.
func InitSchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Interaction is one logged query/answer pair.
type Interaction struct {
	ID              int64     `json:"id"`
	Query           string    `json:"query"`
	PlaceName       *string   `json:"place_name"`
	UserIP          *string   `json:"user_ip,omitempty"`
	HasWeather      bool      `json:"has_weather"`
	HasPlaces       bool      `json:"has_places"`
	WeatherTemp     *float64  `json:"weather_temp"`
	WeatherRainProb *float64  `json:"weather_rain_prob"`
	PlacesCount     int       `json:"places_count"`
	Error           *string   `json:"error"`
	Success         bool      `json:"success"`
	CreatedAt       time.Time `json:"created_at"`
}

type SaveInteractionParams struct {
	Query           string
	PlaceName       *string
	UserIP          *string
	HasWeather      bool
	HasPlaces       bool
	WeatherTemp     *float64
	WeatherRainProb *float64
	PlacesCount     int
	Error           *string
	Success         bool
}

// Stats summarizes the history log.
type Stats struct {
	TotalQueries      int64 `json:"total_queries"`
	SuccessfulQueries int64 `json:"successful_queries"`
	UniquePlaces      int64 `json:"unique_places"`
}

// Repository provides query-history persistence. The history log is an
// append-only side effect; its failures never alter returned answers.
type Repository interface {
	SaveInteraction(ctx context.Context, arg SaveInteractionParams) (int64, error)
	GetRecent(ctx context.Context, limit, days int) ([]Interaction, error)
	GetByPlace(ctx context.Context, placeName string, limit int) ([]Interaction, error)
	GetStats(ctx context.Context) (Stats, error)
}

type HistoryRepository struct {
	db DB
}

func NewHistoryRepository(db DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

const interactionColumns = `id, query, place_name, user_ip, has_weather, has_places,
	weather_temp, weather_rain_prob, places_count, error, success, created_at`

func (r *HistoryRepository) SaveInteraction(ctx context.Context, arg SaveInteractionParams) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO query_history
			(query, place_name, user_ip, has_weather, has_places,
			 weather_temp, weather_rain_prob, places_count, error, success)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		arg.Query, arg.PlaceName, arg.UserIP, arg.HasWeather, arg.HasPlaces,
		arg.WeatherTemp, arg.WeatherRainProb, arg.PlacesCount, arg.Error, arg.Success,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save interaction: %w", err)
	}
	return id, nil
}

func (r *HistoryRepository) GetRecent(ctx context.Context, limit, days int) ([]Interaction, error) {
	var rows pgx.Rows
	var err error

	if days > 0 {
		rows, err = r.db.Query(ctx,
			`SELECT `+interactionColumns+`
			 FROM query_history
			 WHERE created_at >= now() - ($1 * interval '1 day')
			 ORDER BY created_at DESC
			 LIMIT $2`,
			days, limit)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+interactionColumns+`
			 FROM query_history
			 ORDER BY created_at DESC
			 LIMIT $1`,
			limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	return scanInteractions(rows)
}

func (r *HistoryRepository) GetByPlace(ctx context.Context, placeName string, limit int) ([]Interaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+interactionColumns+`
		 FROM query_history
		 WHERE place_name = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		placeName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history by place: %w", err)
	}
	defer rows.Close()

	return scanInteractions(rows)
}

func (r *HistoryRepository) GetStats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE success),
		        COUNT(DISTINCT place_name) FILTER (WHERE place_name IS NOT NULL)
		 FROM query_history`,
	).Scan(&stats.TotalQueries, &stats.SuccessfulQueries, &stats.UniquePlaces)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to query stats: %w", err)
	}
	return stats, nil
}

func scanInteractions(rows pgx.Rows) ([]Interaction, error) {
	interactions := make([]Interaction, 0)
	for rows.Next() {
		var it Interaction
		if err := rows.Scan(
			&it.ID, &it.Query, &it.PlaceName, &it.UserIP, &it.HasWeather, &it.HasPlaces,
			&it.WeatherTemp, &it.WeatherRainProb, &it.PlacesCount, &it.Error, &it.Success, &it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		interactions = append(interactions, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read interactions: %w", err)
	}
	return interactions, nil
}
