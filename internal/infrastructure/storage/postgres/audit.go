package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"savdo/internal/core/actor"
	"savdo/internal/core/id"
)

// AuditAction represents the type of audited ledger operation.
type AuditAction string

const (
	AuditActionLoad       AuditAction = "load"
	AuditActionSell       AuditAction = "sell"
	AuditActionReturn     AuditAction = "return"
	AuditActionSaleCreate AuditAction = "sale_create"
	AuditActionTransition AuditAction = "transition"
	AuditActionPayment    AuditAction = "payment"
	AuditActionReceive    AuditAction = "receive"
)

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// AuditEntry records one ledger operation with its payload.
type AuditEntry struct {
	ID                id.ID           `db:"id"`
	TenantID          id.ID           `db:"tenant_id"`
	EntityType        string          `db:"entity_type"`
	EntityID          id.ID           `db:"entity_id"`
	Action            AuditAction     `db:"action"`
	ActorKind         string          `db:"actor_kind"`
	ActorID           string          `db:"actor_id"`
	Payload           json.RawMessage `db:"payload"`
	PayloadCompressed []byte          `db:"payload_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// AuditService writes the append-only operation trail. Large payloads
// (multi-line loads, bulk receipts) are compressed before insert.
type AuditService struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int // bytes
}

// NewAuditService creates a new audit service.
func NewAuditService(txManager *TxManager) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditService{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// Log records an audit entry. Actor identity is taken from context when
// not set explicitly.
func (s *AuditService) Log(ctx context.Context, entry AuditEntry) error {
	if a, ok := actor.FromContext(ctx); ok && entry.ActorID == "" {
		entry.ActorKind = string(a.Kind)
		entry.ActorID = a.ID.String()
	}

	if id.IsNil(entry.ID) {
		entry.ID = id.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	entry.CompressionAlgo = CompressionNone
	if len(entry.Payload) > s.compressThreshold {
		entry.PayloadCompressed = s.encoder.EncodeAll(entry.Payload, nil)
		entry.Payload = nil
		entry.CompressionAlgo = CompressionZstd
	}

	sql := `
		INSERT INTO audit_log (
			id, tenant_id, entity_type, entity_id, action,
			actor_kind, actor_id,
			payload, payload_compressed, compression_algo,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	querier := s.txManager.GetQuerier(ctx)
	_, err := querier.Exec(ctx, sql,
		entry.ID, entry.TenantID, entry.EntityType, entry.EntityID, entry.Action,
		entry.ActorKind, entry.ActorID,
		entry.Payload, entry.PayloadCompressed, entry.CompressionAlgo,
		entry.CreatedAt,
	)

	return err
}

// LogOperation is a convenience method for logging one ledger operation.
func (s *AuditService) LogOperation(
	ctx context.Context,
	tenantID id.ID,
	entityType string,
	entityID id.ID,
	action AuditAction,
	payload any,
) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	return s.Log(ctx, AuditEntry{
		TenantID:   tenantID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Payload:    payloadJSON,
	})
}

// GetEntityHistory retrieves the audit trail for one entity.
func (s *AuditService) GetEntityHistory(
	ctx context.Context,
	tenantID id.ID,
	entityType string,
	entityID id.ID,
	limit int,
) ([]AuditEntry, error) {
	sql := `
		SELECT id, tenant_id, entity_type, entity_id, action,
			   actor_kind, actor_id,
			   payload, payload_compressed, compression_algo,
			   created_at
		FROM audit_log
		WHERE tenant_id = $1 AND entity_type = $2 AND entity_id = $3
		ORDER BY created_at DESC
		LIMIT $4
	`

	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, sql, tenantID, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		err := rows.Scan(
			&e.ID, &e.TenantID, &e.EntityType, &e.EntityID, &e.Action,
			&e.ActorKind, &e.ActorID,
			&e.Payload, &e.PayloadCompressed, &e.CompressionAlgo,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		if e.CompressionAlgo == CompressionZstd && len(e.PayloadCompressed) > 0 {
			decompressed, err := s.decoder.DecodeAll(e.PayloadCompressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress payload: %w", err)
			}
			e.Payload = decompressed
			e.PayloadCompressed = nil
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}
