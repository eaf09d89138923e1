package storage

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		sku      VARCHAR(64)  NOT NULL,
		name     VARCHAR(255) NOT NULL,
		category VARCHAR(128) NOT NULL DEFAULT 'General',
		PRIMARY KEY (sku)
	)`,
	`CREATE TABLE IF NOT EXISTS slots (
		position_id  VARCHAR(16) NOT NULL,
		status       ENUM('FREE','OCCUPIED') NOT NULL DEFAULT 'FREE',
		occupant_sku VARCHAR(64) NULL,
		PRIMARY KEY (position_id),
		FOREIGN KEY (occupant_sku) REFERENCES products (sku)
	)`,
	`CREATE TABLE IF NOT EXISTS movements (
		id          BIGINT NOT NULL AUTO_INCREMENT,
		ts          DATETIME(6) NOT NULL,
		kind        ENUM('IN','OUT') NOT NULL,
		sku         VARCHAR(64) NOT NULL,
		quantity    INT NOT NULL,
		position_id VARCHAR(16) NOT NULL,
		PRIMARY KEY (id),
		KEY idx_movements_sku (sku),
		KEY idx_movements_position (position_id),
		FOREIGN KEY (sku) REFERENCES products (sku),
		FOREIGN KEY (position_id) REFERENCES slots (position_id)
	)`,
}

// EnsureSchema creates the three relations when missing. The foreign
// keys are belt and braces; referential integrity is enforced by the
// validator at write time, not assumed from the storage engine.
func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
