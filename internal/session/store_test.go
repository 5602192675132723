package session

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePutAndGet(t *testing.T) {
	store := NewStore()

	err := store.Put(&Record{SessionID: "session_1_abc", Status: StatusInitializing})
	require.NoError(t, err)

	rec, ok := store.Get("session_1_abc")
	require.True(t, ok)
	assert.Equal(t, StatusInitializing, rec.Status)

	_, ok = store.Get("session_2_def")
	assert.False(t, ok)
}

func TestStoreRejectsDuplicates(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Put(&Record{SessionID: "session_1_abc"}))

	err := store.Put(&Record{SessionID: "session_1_abc"})
	require.Error(t, err)

	var dup *DuplicateSessionError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "session_1_abc", dup.SessionID)
}

func TestStoreRemoveIsIdempotent(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Put(&Record{SessionID: "session_1_abc"}))

	store.Remove("session_1_abc")
	store.Remove("session_1_abc")
	store.Remove("never_existed")

	assert.Equal(t, 0, store.Len())
}

func TestStoreGetReturnsCopy(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Put(&Record{SessionID: "session_1_abc", Status: StatusInitializing}))

	rec, ok := store.Get("session_1_abc")
	require.True(t, ok)
	rec.Status = StatusConnected

	fresh, _ := store.Get("session_1_abc")
	assert.Equal(t, StatusInitializing, fresh.Status)
}

func TestStoreUpdateMutatesLiveRecord(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Put(&Record{SessionID: "session_1_abc", Status: StatusInitializing}))

	ok := store.Update("session_1_abc", func(rec *Record) {
		rec.Status = StatusWaitingQR
	})
	require.True(t, ok)

	rec, _ := store.Get("session_1_abc")
	assert.Equal(t, StatusWaitingQR, rec.Status)

	assert.False(t, store.Update("missing", func(*Record) {}))
}

func TestStoreListSnapshot(t *testing.T) {
	store := NewStore()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Put(&Record{SessionID: fmt.Sprintf("session_%d_x", i)}))
	}

	list := store.List()
	require.Len(t, list, 3)
	assert.Equal(t, "session_0_x", list[0].SessionID)
	assert.Equal(t, "session_2_x", list[2].SessionID)

	// Mutating the snapshot must not touch the store.
	list[0].Status = StatusConnected
	rec, _ := store.Get("session_0_x")
	assert.NotEqual(t, StatusConnected, rec.Status)
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusInitializing, StatusWaitingQR, true},
		{StatusInitializing, StatusAuthenticated, true},
		{StatusWaitingQR, StatusWaitingQR, true},
		{StatusWaitingQR, StatusAuthenticated, true},
		{StatusAuthenticated, StatusConnected, true},
		{StatusConnected, StatusDisconnected, true},
		{StatusConnected, StatusAuthFailed, true},
		{StatusConnected, StatusWaitingQR, false},
		{StatusAuthenticated, StatusWaitingQR, false},
		{StatusDisconnected, StatusWaitingQR, false},
		{StatusAuthFailed, StatusConnected, false},
		{StatusDisconnected, StatusConnected, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}

	assert.True(t, StatusDisconnected.Terminal())
	assert.True(t, StatusAuthFailed.Terminal())
	assert.False(t, StatusConnected.Terminal())
}
