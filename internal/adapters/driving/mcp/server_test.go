package mcp

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil record service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingRecordService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Records: &mockRecordService{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("records only is valid", func(t *testing.T) {
		assert.NoError(t, (&Ports{Records: &mockRecordService{}}).Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{Records: &mockRecordService{}, Reconciler: &mockReconciler{}}
		assert.NoError(t, ports.Validate())
	})
}

func TestServer_Version(t *testing.T) {
	s, err := NewServer(&Ports{Records: &mockRecordService{}})
	require.NoError(t, err)
	assert.Equal(t, "dev", s.Version())

	s, err = NewServer(&Ports{Records: &mockRecordService{}}, WithVersion("1.2.3"), WithVersion(""))
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", s.Version())
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	s, err := NewServer(&Ports{Records: &mockRecordService{}})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	resp.Body.Close()

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_RunHTTPBadAddress(t *testing.T) {
	s, err := NewServer(&Ports{Records: &mockRecordService{}})
	require.NoError(t, err)

	err = s.RunHTTP(context.Background(), "not-an-address")
	assert.ErrorContains(t, err, "listen on not-an-address")
}
