package health

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/nutrilog/internal/logging"
	"github.com/dmitrijs2005/nutrilog/internal/storage/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type switchable struct{ ok atomic.Bool }

func (s *switchable) CheckSchema(context.Context) remote.SchemaStatus {
	if s.ok.Load() {
		return remote.SchemaStatus{OK: true}
	}
	return remote.SchemaStatus{MissingTables: true, Message: "relation \"food_entries\" does not exist"}
}

func TestRefresh_MirrorsSchemaCheck(t *testing.T) {
	c := &switchable{}
	s := NewServer("127.0.0.1:0", logging.Nop(), c, time.Hour)
	ctx := context.Background()

	st := s.Refresh(ctx)
	assert.True(t, st.MissingTables)
	resp, err := s.hs.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)

	c.ok.Store(true)
	s.Refresh(ctx)
	resp, err = s.hs.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestServe_AnswersOverGRPC(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewServer("", logging.Nop(), AlwaysOK, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, lis) }()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	cctx, ccancel := context.WithTimeout(ctx, 2*time.Second)
	defer ccancel()
	resp, err := healthpb.NewHealthClient(conn).Check(cctx, &healthpb.HealthCheckRequest{Service: ServiceName}, grpc.WaitForReady(true))
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	s := NewServer("127.0.0.1:99999", logging.Nop(), AlwaysOK, time.Hour)
	require.Error(t, s.Run(context.Background()))
}
