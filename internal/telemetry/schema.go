package telemetry

import (
	"database/sql"

	"github.com/ghQQ/capturectl/internal/errors"
)

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS measurements (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            timestamp INTEGER NOT NULL,
            period_us INTEGER,
            average_period_us INTEGER,
            frequency_hz INTEGER,
            raw_ticks INTEGER,
            wraps INTEGER,
            edge INTEGER
        )
    `)
	if err != nil {
		return errors.New().Wrap(ErrSchemaInitFailed, err)
	}

	return nil
}

func insertMeasurementSQL() string {
	return `
        INSERT INTO measurements (
            timestamp, period_us, average_period_us,
            frequency_hz, raw_ticks, wraps, edge
        ) VALUES (?, ?, ?, ?, ?, ?, ?)
    `
}
