package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mwhayford/rentledger/internal/application"
	"github.com/mwhayford/rentledger/internal/domain"
)

const paymentMethodColumns = `id, user_id, type, processor_method_id, last_four_digits,
		brand, bank_name, is_default, is_active, created_at, updated_at`

type PaymentMethodRepository struct {
	db *DB
}

var _ application.PaymentMethodStore = (*PaymentMethodRepository)(nil)

func NewPaymentMethodRepository(db *DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

func (r *PaymentMethodRepository) Create(ctx context.Context, method *domain.PaymentMethod) error {
	query := `
		INSERT INTO payment_methods (` + paymentMethodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	m := toPaymentMethodModel(method)
	_, err := r.db.Pool.Exec(ctx, query,
		m.ID, m.UserID, m.Type, m.ProcessorMethodID, m.LastFourDigits,
		m.Brand, m.BankName, m.IsDefault, m.IsActive, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create payment method: %w", err)
	}
	return nil
}

func (r *PaymentMethodRepository) Update(ctx context.Context, method *domain.PaymentMethod) error {
	query := `
		UPDATE payment_methods
		SET processor_method_id = $2, last_four_digits = $3, brand = $4, bank_name = $5,
			is_default = $6, is_active = $7, updated_at = $8
		WHERE id = $1
	`

	m := toPaymentMethodModel(method)
	tag, err := r.db.Pool.Exec(ctx, query,
		m.ID, m.ProcessorMethodID, m.LastFourDigits, m.Brand, m.BankName,
		m.IsDefault, m.IsActive, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update payment method: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewMethodNotFoundError(m.ID)
	}
	return nil
}

// SetDefault clears the user's current default and promotes methodID inside
// one transaction, so no other reader ever sees two defaults. The clear must
// run first: the partial unique index on (user_id) WHERE is_default is
// checked per row, and setting the new default while the old row still
// carries the flag would trip it mid-statement.
func (r *PaymentMethodRepository) SetDefault(ctx context.Context, userID, methodID string) error {
	clear := `
		UPDATE payment_methods
		SET is_default = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND is_default
	`
	promote := `
		UPDATE payment_methods
		SET is_default = TRUE, updated_at = NOW()
		WHERE id = $2 AND user_id = $1 AND is_active
	`

	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, clear, userID); err != nil {
			return fmt.Errorf("clear default payment method: %w", err)
		}
		tag, err := tx.Exec(ctx, promote, userID, methodID)
		if err != nil {
			return fmt.Errorf("set default payment method: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.NewMethodNotFoundError(methodID)
		}
		return nil
	})
}

func (r *PaymentMethodRepository) FindByID(ctx context.Context, id string) (*domain.PaymentMethod, error) {
	query := `SELECT ` + paymentMethodColumns + ` FROM payment_methods WHERE id = $1`
	row := r.db.Pool.QueryRow(ctx, query, id)

	var m PaymentMethodModel
	err := row.Scan(
		&m.ID, &m.UserID, &m.Type, &m.ProcessorMethodID, &m.LastFourDigits,
		&m.Brand, &m.BankName, &m.IsDefault, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewMethodNotFoundError(id)
		}
		return nil, fmt.Errorf("scan payment method: %w", err)
	}
	return toPaymentMethodDomain(m), nil
}

func (r *PaymentMethodRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.PaymentMethod, error) {
	query := `SELECT ` + paymentMethodColumns + ` FROM payment_methods
		WHERE user_id = $1 AND is_active
		ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query payment methods by user_id: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.PaymentMethod, error) {
		var m PaymentMethodModel
		err := row.Scan(
			&m.ID, &m.UserID, &m.Type, &m.ProcessorMethodID, &m.LastFourDigits,
			&m.Brand, &m.BankName, &m.IsDefault, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
		)
		return toPaymentMethodDomain(m), err
	})
}
