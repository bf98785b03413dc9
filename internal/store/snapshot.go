package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/arbelos-lang/arbelos/internal/codec"
	"github.com/arbelos-lang/arbelos/internal/defs"
)

// Snapshot kinds.
const (
	KindBuiltin = "builtin"
	KindUser    = "user"
)

// ErrNoSnapshot is returned when no usable snapshot exists.
var ErrNoSnapshot = errors.New("no usable snapshot")

// SaveBuiltin stores the table's builtin namespace as a snapshot.
// freshness should be the newest modification time (unix seconds) of
// the spec files the namespace was compiled from; LoadBuiltin compares
// it against the current files before trusting the snapshot.
//
// Returns the new snapshot's id (UUIDv7, time-sortable).
func (s *Store) SaveBuiltin(ctx context.Context, ds *defs.Definitions, freshness int64) (string, error) {
	payload, err := codec.EncodeNamespace(ds.BuiltinDefinitions(), ds.Now())
	if err != nil {
		return "", fmt.Errorf("encode builtin namespace: %w", err)
	}
	return s.insert(ctx, KindBuiltin, freshness, payload)
}

// LoadBuiltin restores the most recent builtin snapshot whose
// freshness stamp is at least newerThan, installing its records into
// the table's builtin namespace. Returns ErrNoSnapshot when no
// snapshot qualifies - the caller should recompile from spec files and
// save a fresh one.
func (s *Store) LoadBuiltin(ctx context.Context, ds *defs.Definitions, newerThan int64) error {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM snapshots
		WHERE kind = ? AND freshness >= ?
		ORDER BY id DESC LIMIT 1
	`, KindBuiltin, newerThan).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoSnapshot
	}
	if err != nil {
		return fmt.Errorf("query builtin snapshot: %w", err)
	}

	symbols, _, err := codec.DecodeNamespace(payload)
	if err != nil {
		return fmt.Errorf("decode builtin snapshot: %w", err)
	}
	for name, def := range symbols {
		ds.SetBuiltinDefinition(name, def)
	}
	slog.Info("builtin namespace restored from snapshot", "symbols", len(symbols))
	return nil
}

// SaveUser stores the table's user namespace as a snapshot and returns
// the new snapshot's id.
func (s *Store) SaveUser(ctx context.Context, ds *defs.Definitions) (string, error) {
	payload, err := codec.EncodeNamespace(ds.UserDefinitions(), ds.Now())
	if err != nil {
		return "", fmt.Errorf("encode user namespace: %w", err)
	}
	return s.insert(ctx, KindUser, 0, payload)
}

// LoadUser restores a user snapshot into the table, replacing the user
// namespace. An empty id selects the most recent user snapshot.
// Returns ErrNoSnapshot when none exists.
func (s *Store) LoadUser(ctx context.Context, ds *defs.Definitions, id string) error {
	var (
		payload []byte
		err     error
	)
	if id == "" {
		err = s.db.QueryRowContext(ctx, `
			SELECT payload FROM snapshots
			WHERE kind = ? ORDER BY id DESC LIMIT 1
		`, KindUser).Scan(&payload)
	} else {
		err = s.db.QueryRowContext(ctx, `
			SELECT payload FROM snapshots
			WHERE kind = ? AND id = ?
		`, KindUser, id).Scan(&payload)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoSnapshot
	}
	if err != nil {
		return fmt.Errorf("query user snapshot: %w", err)
	}

	symbols, _, err := codec.DecodeNamespace(payload)
	if err != nil {
		return fmt.Errorf("decode user snapshot: %w", err)
	}
	ds.SetUserDefinitions(symbols)
	slog.Info("user namespace restored from snapshot", "symbols", len(symbols), "id", id)
	return nil
}

func (s *Store) insert(ctx context.Context, kind string, freshness int64, payload []byte) (string, error) {
	id := uuid.Must(uuid.NewV7()).String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, kind, format_version, freshness, payload)
		VALUES (?, ?, ?, ?, ?)
	`, id, kind, codec.FormatVersion, freshness, payload)
	if err != nil {
		return "", fmt.Errorf("insert %s snapshot: %w", kind, err)
	}
	slog.Debug("snapshot saved", "kind", kind, "id", id, "bytes", len(payload))
	return id, nil
}

// Snapshots lists stored snapshot metadata of one kind, newest first.
func (s *Store) Snapshots(ctx context.Context, kind string) ([]SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, format_version, freshness, created_at, length(payload)
		FROM snapshots WHERE kind = ? ORDER BY id DESC
	`, kind)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var infos []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		if err := rows.Scan(&info.ID, &info.Kind, &info.FormatVersion,
			&info.Freshness, &info.CreatedAt, &info.Bytes); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// SnapshotInfo describes one stored snapshot.
type SnapshotInfo struct {
	ID            string
	Kind          string
	FormatVersion int
	Freshness     int64
	CreatedAt     string
	Bytes         int64
}
