package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/mgarrido/wms/internal/core/domain"
	"github.com/mgarrido/wms/internal/port"
)

const mysqlDupEntry = 1062

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// --- catalog ---

func (m *MySQLAdapter) CreateProduct(ctx context.Context, p domain.Product) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO products (sku, name, category) VALUES (?, ?, ?)`,
		p.SKU, p.Name, p.Category,
	)
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDupEntry {
		return domain.ErrDuplicateSKU
	}
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetProduct(ctx context.Context, sku string) (*domain.Product, error) {
	var p domain.Product
	err := m.db.QueryRowContext(ctx, `
		SELECT sku, name, category FROM products WHERE sku = ?`, sku,
	).Scan(&p.SKU, &p.Name, &p.Category)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return &p, nil
}

func (m *MySQLAdapter) ProductExists(ctx context.Context, sku string) (bool, error) {
	var one int
	err := m.db.QueryRowContext(ctx, `
		SELECT 1 FROM products WHERE sku = ?`, sku,
	).Scan(&one)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query product: %w", err)
	}
	return true, nil
}

func (m *MySQLAdapter) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT sku, name, category FROM products ORDER BY sku`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.SKU, &p.Name, &p.Category); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// --- slot registry ---

func (m *MySQLAdapter) GetSlot(ctx context.Context, positionID string) (*domain.Slot, error) {
	var (
		s        domain.Slot
		occupant sql.NullString
	)
	err := m.db.QueryRowContext(ctx, `
		SELECT position_id, status, occupant_sku
		FROM slots WHERE position_id = ?`, positionID,
	).Scan(&s.PositionID, &s.Status, &occupant)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query slot: %w", err)
	}
	s.OccupantSKU = occupant.String
	return &s, nil
}

func (m *MySQLAdapter) ListSlots(ctx context.Context) ([]domain.Slot, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT position_id, status, occupant_sku
		FROM slots ORDER BY position_id`)
	if err != nil {
		return nil, fmt.Errorf("query slots: %w", err)
	}
	defer rows.Close()

	var slots []domain.Slot
	for rows.Next() {
		var (
			s        domain.Slot
			occupant sql.NullString
		)
		if err := rows.Scan(&s.PositionID, &s.Status, &occupant); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		s.OccupantSKU = occupant.String
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (m *MySQLAdapter) ListFreeSlots(ctx context.Context) ([]string, error) {
	return m.slotIDs(ctx, `
		SELECT position_id FROM slots WHERE status = 'FREE' ORDER BY position_id`)
}

func (m *MySQLAdapter) ListSlotsOccupiedBy(ctx context.Context, sku string) ([]string, error) {
	return m.slotIDs(ctx, `
		SELECT position_id FROM slots
		WHERE status = 'OCCUPIED' AND occupant_sku = ? ORDER BY position_id`, sku)
}

func (m *MySQLAdapter) slotIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query slot ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan slot id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (m *MySQLAdapter) CountSlots(ctx context.Context) (int, error) {
	var count int
	if err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM slots`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count slots: %w", err)
	}
	return count, nil
}

func (m *MySQLAdapter) CreateSlot(ctx context.Context, positionID string) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT IGNORE INTO slots (position_id, status, occupant_sku)
		VALUES (?, 'FREE', NULL)`, positionID,
	)
	if err != nil {
		return fmt.Errorf("insert slot: %w", err)
	}
	return nil
}

// --- ledger ---

// ApplyMovement appends the movement and flips the slot inside one
// transaction. The slot update is guarded by the expected prior state,
// so a concurrent writer that got there first makes this call fail with
// ErrSlotStateChanged and leaves no trace in either relation.
func (m *MySQLAdapter) ApplyMovement(ctx context.Context, mv domain.Movement) (int64, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO movements (ts, kind, sku, quantity, position_id)
		VALUES (?, ?, ?, ?, ?)`,
		mv.Timestamp, mv.Kind, mv.SKU, mv.Quantity, mv.PositionID,
	)
	if err != nil {
		return 0, fmt.Errorf("insert movement: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("movement id: %w", err)
	}

	var update sql.Result
	switch mv.Kind {
	case domain.MovementInbound:
		update, err = tx.ExecContext(ctx, `
			UPDATE slots SET status = 'OCCUPIED', occupant_sku = ?
			WHERE position_id = ? AND status = 'FREE'`,
			mv.SKU, mv.PositionID,
		)
	case domain.MovementOutbound:
		update, err = tx.ExecContext(ctx, `
			UPDATE slots SET status = 'FREE', occupant_sku = NULL
			WHERE position_id = ? AND status = 'OCCUPIED' AND occupant_sku = ?`,
			mv.PositionID, mv.SKU,
		)
	default:
		return 0, fmt.Errorf("unknown movement kind %q", mv.Kind)
	}
	if err != nil {
		return 0, fmt.Errorf("update slot: %w", err)
	}

	rows, _ := update.RowsAffected()
	if rows == 0 {
		return 0, port.ErrSlotStateChanged
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit movement: %w", err)
	}
	return id, nil
}

func (m *MySQLAdapter) RecentMovements(ctx context.Context, limit int) ([]domain.Movement, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT m.id, m.ts, m.kind, m.sku, m.quantity, m.position_id, p.name
		FROM movements m
		JOIN products p ON p.sku = m.sku
		ORDER BY m.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	defer rows.Close()

	return scanMovements(rows, true)
}

func (m *MySQLAdapter) MovementsForSlot(ctx context.Context, positionID string) ([]domain.Movement, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, ts, kind, sku, quantity, position_id
		FROM movements WHERE position_id = ? ORDER BY id`, positionID)
	if err != nil {
		return nil, fmt.Errorf("query slot movements: %w", err)
	}
	defer rows.Close()

	return scanMovements(rows, false)
}

func scanMovements(rows *sql.Rows, withName bool) ([]domain.Movement, error) {
	var movements []domain.Movement
	for rows.Next() {
		var mv domain.Movement
		var err error
		if withName {
			err = rows.Scan(&mv.ID, &mv.Timestamp, &mv.Kind, &mv.SKU,
				&mv.Quantity, &mv.PositionID, &mv.ProductName)
		} else {
			err = rows.Scan(&mv.ID, &mv.Timestamp, &mv.Kind, &mv.SKU,
				&mv.Quantity, &mv.PositionID)
		}
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		movements = append(movements, mv)
	}
	return movements, rows.Err()
}

func (m *MySQLAdapter) StockLevel(ctx context.Context, sku string) (int, error) {
	var level int
	err := m.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN kind = 'IN' THEN quantity ELSE -quantity END), 0)
		FROM movements WHERE sku = ?`, sku,
	).Scan(&level)
	if err != nil {
		return 0, fmt.Errorf("sum stock: %w", err)
	}
	return level, nil
}

func (m *MySQLAdapter) StockLevels(ctx context.Context) (map[string]int, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT p.sku,
		       COALESCE(SUM(CASE WHEN m.kind = 'IN' THEN m.quantity ELSE -m.quantity END), 0)
		FROM products p
		LEFT JOIN movements m ON m.sku = p.sku
		GROUP BY p.sku`)
	if err != nil {
		return nil, fmt.Errorf("sum stock levels: %w", err)
	}
	defer rows.Close()

	levels := make(map[string]int)
	for rows.Next() {
		var (
			sku   string
			level int
		)
		if err := rows.Scan(&sku, &level); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		levels[sku] = level
	}
	return levels, rows.Err()
}

func (m *MySQLAdapter) Stats(ctx context.Context) (domain.WarehouseStats, error) {
	var s domain.WarehouseStats
	err := m.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM slots),
			(SELECT COUNT(*) FROM slots WHERE status = 'OCCUPIED'),
			(SELECT COUNT(*) FROM movements)`,
	).Scan(&s.TotalProducts, &s.TotalSlots, &s.OccupiedSlots, &s.TotalMovements)
	if err != nil {
		return domain.WarehouseStats{}, fmt.Errorf("query stats: %w", err)
	}
	return s, nil
}
