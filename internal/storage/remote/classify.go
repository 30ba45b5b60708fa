package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/nutrilog/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes with a dedicated kind.
var sqlStateKinds = map[string]error{
	"42P01": common.ErrRemoteSchemaMissing,    // undefined_table
	"42703": common.ErrRemoteSchemaMissing,    // undefined_column
	"42501": common.ErrRemotePermissionDenied, // insufficient_privilege
	"53100": common.ErrRemoteQuotaExceeded,    // disk_full
	"53200": common.ErrRemoteQuotaExceeded,    // out_of_memory
	"53400": common.ErrRemoteQuotaExceeded,    // configuration_limit_exceeded
	"54000": common.ErrRemoteQuotaExceeded,    // program_limit_exceeded
}

// messageKinds is evaluated in order.
var messageKinds = []struct {
	needles []string
	kind    error
}{
	{[]string{"quota", "limit exceeded", "disk full", "too large"}, common.ErrRemoteQuotaExceeded},
	{[]string{"does not exist", "not found", "no such table", "no such column", "undefined table"}, common.ErrRemoteSchemaMissing},
	{[]string{"row-level security", "permission denied", "insufficient privilege"}, common.ErrRemotePermissionDenied},
}

// Kind maps a driver error to one of the remote sentinel errors.
func Kind(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if kind, ok := sqlStateKinds[pgErr.Code]; ok {
			return kind
		}
	}
	msg := strings.ToLower(err.Error())
	for _, mk := range messageKinds {
		for _, n := range mk.needles {
			if strings.Contains(msg, n) {
				return mk.kind
			}
		}
	}
	return common.ErrRemoteBackend
}

// classify wraps err as a *common.StoreError. Cancellation passes through
// unclassified.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *common.StoreError
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return common.NewStoreError(Kind(err), op, err)
}
