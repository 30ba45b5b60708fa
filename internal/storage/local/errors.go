package local

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/nutrilog/internal/common"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// isStorageFull reports whether err means the device ran out of space.
func isStorageFull(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_FULL {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database or disk is full") ||
		strings.Contains(msg, "no space left on device") ||
		strings.Contains(msg, "quota")
}

func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if isStorageFull(err) {
		return common.NewStoreError(common.ErrDeviceStorageFull, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
