package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

var ErrNotFound = errors.New("record not found")

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// Config holds database configuration
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// New creates a new database connection
func New(cfg Config) (*DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)
	return open(dsn, cfg)
}

// NewFromURL creates a database connection from a connection URL
func NewFromURL(databaseURL string) (*DB, error) {
	return open(databaseURL, Config{MaxConnections: 25, MaxIdleConns: 5})
}

func open(dsn string, cfg Config) (*DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConnections > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{sqlDB}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Phone is a catalog entry. Optional numeric columns are coalesced to
// zero at query time; zero means "not specified".
type Phone struct {
	ID                int       `json:"id"`
	Brand             string    `json:"brand"`
	Model             string    `json:"model"`
	PriceINR          int       `json:"price_inr"`
	DisplaySize       float64   `json:"display_size,omitempty"`
	DisplayType       string    `json:"display_type,omitempty"`
	DisplayResolution string    `json:"display_resolution,omitempty"`
	RefreshRate       int       `json:"refresh_rate,omitempty"`
	Processor         string    `json:"processor,omitempty"`
	RAMGB             int       `json:"ram_gb,omitempty"`
	StorageGB         int       `json:"storage_gb,omitempty"`
	RearCamera        string    `json:"rear_camera,omitempty"`
	FrontCamera       string    `json:"front_camera,omitempty"`
	BatteryMAh        int       `json:"battery_mah,omitempty"`
	FastChargingW     int       `json:"fast_charging_w,omitempty"`
	WirelessCharging  bool      `json:"wireless_charging"`
	OS                string    `json:"os,omitempty"`
	LaunchYear        int       `json:"launch_year,omitempty"`
	Features          []string  `json:"features,omitempty"`
	Highlights        string    `json:"highlights,omitempty"`
	ImageURL          string    `json:"image_url,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Name returns the display name "Brand Model"
func (p Phone) Name() string {
	return p.Brand + " " + p.Model
}

// Message is a persisted conversation message
type Message struct {
	ID             int       `json:"id"`
	ConversationID int       `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Metadata       string    `json:"metadata,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Conversation is a chat session
type Conversation struct {
	ID           int       `json:"id"`
	SessionID    string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// QueryRecord is one analytics row describing a processed query
type QueryRecord struct {
	ID               int       `json:"id"`
	Query            string    `json:"query"`
	Intent           string    `json:"intent"`
	ProductsReturned int       `json:"products_returned"`
	ResponseTimeMs   int       `json:"response_time_ms"`
	WasAdversarial   bool      `json:"was_adversarial"`
	CreatedAt        time.Time `json:"created_at"`
}

// AdminUser is a catalog administrator account
type AdminUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// marshalFeatures serializes a feature list for the text column
func marshalFeatures(features []string) (string, error) {
	if features == nil {
		features = []string{}
	}
	b, err := json.Marshal(features)
	if err != nil {
		return "", fmt.Errorf("failed to marshal features: %w", err)
	}
	return string(b), nil
}

// unmarshalFeatures parses the stored JSON feature list; malformed or
// empty values degrade to nil rather than failing the row scan
func unmarshalFeatures(raw string) []string {
	if raw == "" {
		return nil
	}
	var features []string
	if err := json.Unmarshal([]byte(raw), &features); err != nil {
		return nil
	}
	return features
}
