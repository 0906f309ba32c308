package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestDefaultConfig(t *testing.T) {
	want := Config{
		ServiceName:    "chatserver",
		ServiceVersion: "dev",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SampleRate:     1.0,
	}
	assert.Equal(t, want, DefaultConfig())
}

func TestInitDisabledInstallsNoops(t *testing.T) {
	shutdown, err := Init(context.Background(), DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.False(t, IsEnabled())
	assert.NoError(t, shutdown(context.Background()))
}

// Every helper must be callable before Init and on contexts that carry no
// span; session code never checks whether tracing is configured.
func TestNoopSafety(t *testing.T) {
	ctx := context.Background()

	require.NotNil(t, Tracer())
	require.NotNil(t, SpanFromContext(ctx))
	assert.Empty(t, TraceID(ctx))
	assert.Empty(t, SpanID(ctx))

	spanCtx, span := StartSpan(ctx, SpanAuthenticate)
	require.NotNil(t, spanCtx)
	require.NotNil(t, span)
	span.End()

	require.NotPanics(t, func() {
		AddEvent(ctx, "session.authenticated", Username("gertrude"))
		SetAttributes(ctx, SessionID("c02fb3d1"))
		RecordError(ctx, nil)
		RecordError(ctx, errors.New("token rejected"))
	})
}

func TestAttributeConstructors(t *testing.T) {
	stringAttrs := []struct {
		attr attribute.KeyValue
		key  string
		val  string
	}{
		{ClientAddr("10.4.0.12:51820"), AttrClientAddr, "10.4.0.12:51820"},
		{SessionID("c02fb3d1"), AttrSessionID, "c02fb3d1"},
		{Packet("ClientAddFriend"), AttrPacket, "ClientAddFriend"},
		{Username("gertrude"), AttrUsername, "gertrude"},
		{Peer("wilbur"), AttrPeer, "wilbur"},
		{StoreOperation("RemoveFriend"), AttrStoreOperation, "RemoveFriend"},
		{StoreType("badger"), AttrStoreType, "badger"},
	}
	for _, tt := range stringAttrs {
		assert.Equal(t, tt.key, string(tt.attr.Key))
		assert.Equal(t, tt.val, tt.attr.Value.AsString())
	}

	intAttrs := []struct {
		attr attribute.KeyValue
		key  string
		val  int64
	}{
		{PacketID(0xc0ffee), AttrPacketID, 0xc0ffee},
		{MessageCount(7), AttrMessageCount, 7},
		{RelationCount(3), AttrRelationCount, 3},
	}
	for _, tt := range intAttrs {
		assert.Equal(t, tt.key, string(tt.attr.Key))
		assert.Equal(t, tt.val, tt.attr.Value.AsInt64())
	}

	accepted := AuthAccepted(false)
	assert.Equal(t, AttrAuthAccepted, string(accepted.Key))
	assert.False(t, accepted.Value.AsBool())
}

func TestStartPacketSpan(t *testing.T) {
	spanCtx, span := StartPacketSpan(context.Background(), "ClientAddFriend",
		Username("gertrude"), Peer("wilbur"))
	require.NotNil(t, spanCtx)
	require.NotNil(t, span)
	span.End()
}

func TestStartStoreSpan(t *testing.T) {
	spanCtx, span := StartStoreSpan(context.Background(), "MessagesBetween",
		StoreType("sqlite"))
	require.NotNil(t, spanCtx)
	require.NotNil(t, span)
	span.End()
}

func TestInitProfilingDisabled(t *testing.T) {
	shutdown, err := InitProfiling(ProfilingConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown())
	assert.False(t, IsProfilingEnabled())
}

func TestParseProfileType(t *testing.T) {
	for _, valid := range []string{
		"cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space",
		"goroutines", "mutex_count", "mutex_duration", "block_count", "block_duration",
	} {
		_, err := parseProfileType(valid)
		assert.NoError(t, err, "profile type %q should parse", valid)
	}

	_, err := parseProfileType("heap")
	assert.Error(t, err)
}
