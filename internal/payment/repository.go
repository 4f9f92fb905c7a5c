package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"rawmart-be/internal/db"
)

// Repository journals payment callbacks.
type Repository interface {
	SaveCallback(ctx context.Context, cb Callback) (callbackID int64, isDuplicate bool, err error)
	MarkCallbackProcessed(ctx context.Context, callbackID int64) error
	MarkCallbackFailed(ctx context.Context, callbackID int64, reason string) error
}

type repository struct {
	db db.Provider
}

func NewRepository(db db.Provider) Repository {
	return &repository{db: db}
}

func (r *repository) SaveCallback(ctx context.Context, cb Callback) (int64, bool, error) {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return 0, false, err
	}

	const q = `
	INSERT INTO payment_callbacks (
		source,
		reference_id,
		gateway_order_id,
		payment_id,
		outcome,
		signature_valid,
		payload
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (source, gateway_order_id, payment_id, outcome)
	DO NOTHING
	RETURNING id;
	`

	payload := cb.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}

	var id int64
	err = conn.QueryRowContext(ctx, q,
		cb.Source,
		cb.ReferenceID,
		cb.GatewayOrderID,
		cb.PaymentID,
		cb.Outcome,
		cb.SignatureValid,
		[]byte(payload),
	).Scan(&id)
	if err != nil {
		// Replayed callback
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		return 0, false, err
	}

	return id, false, nil
}

func (r *repository) MarkCallbackProcessed(ctx context.Context, callbackID int64) error {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return err
	}

	_, err = conn.ExecContext(ctx,
		`UPDATE payment_callbacks SET processed_at = NOW() WHERE id = $1`, callbackID)
	return err
}

func (r *repository) MarkCallbackFailed(ctx context.Context, callbackID int64, reason string) error {
	conn, err := r.db.Get(ctx)
	if err != nil {
		return err
	}

	_, err = conn.ExecContext(ctx,
		`UPDATE payment_callbacks SET process_error = $2 WHERE id = $1`, callbackID, reason)
	return err
}
