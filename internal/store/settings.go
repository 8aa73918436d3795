// Package store persists settings in a sqlite key/value table.
package store

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/farebox/printd/internal/core"
	"github.com/farebox/printd/internal/layout"
)

const (
	keyTransport     = "printer.transport"
	keyAddress       = "printer.address"
	keyPort          = "printer.port"
	keyRadioAddress  = "printer.radio_address"
	keyRadioName     = "printer.radio_name"
	keyPaper         = "printer.paper"
	keyProtocol      = "printer.protocol"
	keyDensity       = "printer.density"
	keySpeed         = "printer.speed"
	keyAutoReconnect = "printer.auto_reconnect"
)

const (
	defaultProtocol = "escpos"
	defaultDensity  = 8
	defaultSpeed    = 2
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open settings database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create settings table: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the stored value for key, or "" when unset.
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read setting %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("write setting %s: %w", key, err)
	}
	return nil
}

// PrinterConfig reads the persisted printer configuration. Unknown or
// corrupt enum values fall back to the documented defaults: network
// transport, wide paper.
func (s *Store) PrinterConfig() (core.PrinterConfig, error) {
	values, err := s.all()
	if err != nil {
		return core.PrinterConfig{}, err
	}

	cfg := core.PrinterConfig{
		Transport:    core.ParseTransportKind(values[keyTransport]),
		Address:      values[keyAddress],
		Port:         atoiOr(values[keyPort], 9100),
		RadioAddress: values[keyRadioAddress],
		RadioName:    values[keyRadioName],
		Paper:        layout.ParsePaperWidth(values[keyPaper]),
		Protocol:     values[keyProtocol],
		Density:      atoiOr(values[keyDensity], defaultDensity),
		Speed:        atoiOr(values[keySpeed], defaultSpeed),
	}
	if cfg.Protocol == "" {
		cfg.Protocol = defaultProtocol
	}
	cfg.AutoReconnect = values[keyAutoReconnect] == "true"
	return cfg, nil
}

// SavePrinterConfig replaces the persisted configuration wholesale inside
// one transaction.
func (s *Store) SavePrinterConfig(cfg core.PrinterConfig) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin settings transaction: %w", err)
	}
	defer tx.Rollback()

	pairs := map[string]string{
		keyTransport:     string(cfg.Transport),
		keyAddress:       cfg.Address,
		keyPort:          strconv.Itoa(cfg.Port),
		keyRadioAddress:  cfg.RadioAddress,
		keyRadioName:     cfg.RadioName,
		keyPaper:         string(cfg.Paper),
		keyProtocol:      cfg.Protocol,
		keyDensity:       strconv.Itoa(cfg.Density),
		keySpeed:         strconv.Itoa(cfg.Speed),
		keyAutoReconnect: strconv.FormatBool(cfg.AutoReconnect),
	}

	for key, value := range pairs {
		if _, err := tx.Exec(`
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value); err != nil {
			return fmt.Errorf("write setting %s: %w", key, err)
		}
	}
	return tx.Commit()
}

func (s *Store) all() (map[string]string, error) {
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			continue
		}
		values[key] = value
	}
	return values, rows.Err()
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
