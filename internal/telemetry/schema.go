package telemetry

import (
	"database/sql"

	"github.com/vitalguard/vitalguard/internal/errors"
)

// initSchema initializes the database schema for telemetry data
func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS telemetry (
            timestamp INTEGER PRIMARY KEY,
            heart_rate REAL,
            hrv REAL,
            battery REAL,
            total_acceleration REAL,
            monitoring INTEGER,
            alert_active INTEGER
        )
    `)
	if err != nil {
		return errors.New().Wrap(ErrSchemaInitFailed, err)
	}

	return nil
}
