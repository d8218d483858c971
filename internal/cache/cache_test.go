package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/require"
)

func TestSnapshots_GetHitAndMiss(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	snaps := NewSnapshots(rdc, 10*time.Second)
	ctx := context.Background()

	mock.ExpectGet("auc_snap:a1").SetVal(`{"id":"a1"}`)
	payload, ok := snaps.Get(ctx, "a1")
	require.True(t, ok)
	require.JSONEq(t, `{"id":"a1"}`, string(payload))

	mock.ExpectGet("auc_snap:a2").RedisNil()
	_, ok = snaps.Get(ctx, "a2")
	require.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshots_PutUsesTTL(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	snaps := NewSnapshots(rdc, 10*time.Second)

	mock.ExpectSet("auc_snap:a1", []byte(`{}`), 10*time.Second).SetVal("OK")
	snaps.Put(context.Background(), "a1", []byte(`{}`))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshots_Drop(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	snaps := NewSnapshots(rdc, 10*time.Second)

	mock.ExpectDel("auc_snap:a1").SetVal(1)
	snaps.Drop(context.Background(), "a1")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshots_PutMany(t *testing.T) {
	rdc, mock := redismock.NewClientMock()
	snaps := NewSnapshots(rdc, 10*time.Second)

	mock.ExpectSet("auc_snap:a1", []byte(`1`), 10*time.Second).SetVal("OK")
	snaps.PutMany(context.Background(), map[string][]byte{"a1": []byte(`1`)})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshots_NilSafe(t *testing.T) {
	var snaps *Snapshots
	ctx := context.Background()
	_, ok := snaps.Get(ctx, "a1")
	require.False(t, ok)
	snaps.Put(ctx, "a1", []byte(`{}`))
	snaps.PutMany(ctx, map[string][]byte{"a1": []byte(`{}`)})
	snaps.Drop(ctx, "a1")
}
