package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/connectfour/telemetry"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), "", "test-service", "0.0.0")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetup_NoopShutdownIgnoresCancelledContext(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), "", "noop-test", "0.0.0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, shutdown(ctx))
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// non-routable address, nothing is exported before shutdown
	shutdown, err := telemetry.Setup(context.Background(), "http://192.0.2.1:4318", "test-service", "0.0.0")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
