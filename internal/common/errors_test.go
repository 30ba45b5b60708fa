package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreError_MatchesKindAndCause(t *testing.T) {
	cause := errors.New("relation \"food_entries\" does not exist")
	err := fmt.Errorf("list: %w", NewStoreError(ErrRemoteSchemaMissing, "list entries", cause))

	require.ErrorIs(t, err, ErrRemoteSchemaMissing)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, ErrRemoteBackend)

	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "list entries", se.Op)
	assert.Equal(t, "Cloud database is not set up yet.", se.Message())
}

func TestSyncError_CarriesOffset(t *testing.T) {
	err := error(&SyncError{Offset: 10, Err: errors.New("boom")})

	require.ErrorIs(t, err, ErrSyncFailed)
	var se *SyncError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 10, se.Offset)
	assert.Contains(t, err.Error(), "offset 10")
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Please sign in to continue.", UserMessage(fmt.Errorf("save: %w", ErrNotAuthenticated)))
	assert.Contains(t, UserMessage(&SyncError{Offset: 5, Err: errors.New("x")}), "entry 5")
	assert.Equal(t, "Something went wrong.", UserMessage(errors.New("other")))
}
