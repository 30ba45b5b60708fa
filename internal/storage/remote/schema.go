package remote

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/nutrilog/internal/common"
)

// SchemaStatus is the outcome of a schema check.
type SchemaStatus struct {
	OK            bool   `json:"ok"`
	MissingTables bool   `json:"missing_tables"`
	Message       string `json:"message,omitempty"`
}

const schemaQuery = `SELECT id FROM food_entries LIMIT 1`

// querySchema runs the schema query and returns the raw driver error.
func (s *Store) querySchema(ctx context.Context) (SchemaStatus, error) {
	rows, err := s.db.QueryContext(ctx, schemaQuery)
	if err == nil {
		err = rows.Close()
	}
	if err == nil {
		return SchemaStatus{OK: true}, nil
	}
	if errors.Is(Kind(err), common.ErrRemoteSchemaMissing) {
		return SchemaStatus{MissingTables: true, Message: err.Error()}, err
	}
	return SchemaStatus{Message: err.Error()}, err
}

// CheckSchema queries the primary entries table. A missing relation yields
// MissingTables; any other failure yields OK=false with the raw message.
func (s *Store) CheckSchema(ctx context.Context) SchemaStatus {
	st, _ := s.querySchema(ctx)
	if st.OK {
		s.schemaOK.Store(true)
	}
	return st
}

// ensureSchema gates writes on a successful schema check.
func (s *Store) ensureSchema(ctx context.Context) error {
	if s.schemaOK.Load() {
		return nil
	}
	st, err := s.querySchema(ctx)
	if st.OK {
		s.schemaOK.Store(true)
		return nil
	}
	if st.MissingTables {
		return common.NewStoreError(common.ErrRemoteSchemaMissing, "remote.schema", err)
	}
	return classify("remote.schema", err)
}
