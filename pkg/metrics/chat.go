package metrics

import (
	"time"
)

// ChatMetrics provides observability for chat server sessions.
//
// Implementations can collect metrics about session lifecycle,
// authentication outcomes, packet traffic, and request dispatch. This
// interface is optional - pass nil to disable metrics collection with zero
// overhead.
//
// Example usage:
//
//	// With metrics enabled
//	metrics.InitRegistry()
//	chatMetrics := prometheus.NewChatMetrics()
//	server := server.New(config, store, chatMetrics)
//
//	// Without metrics (pass nil for zero overhead)
//	server := server.New(config, store, nil)
type ChatMetrics interface {
	// RecordSessionStarted increments the accepted session counter.
	// Should be called when a new connection is accepted.
	RecordSessionStarted()

	// RecordSessionClosed records a session ending with the reason it closed.
	//
	// Parameters:
	//   - reason: Why the session ended (e.g., "quit", "auth_failed",
	//     "auth_timeout", "transport_error", "shutdown")
	RecordSessionClosed(reason string)

	// SetActiveSessions updates the current session count.
	//
	// Parameters:
	//   - count: Current number of connected sessions
	SetActiveSessions(count int32)

	// RecordAuthentication records an authentication attempt outcome.
	//
	// Parameters:
	//   - outcome: "accepted" or "rejected"
	RecordAuthentication(outcome string)

	// RecordPacketReceived increments the inbound packet counter.
	//
	// Parameters:
	//   - packetType: Packet type name (e.g., "ClientSendMessage")
	RecordPacketReceived(packetType string)

	// RecordPacketSent increments the outbound packet counter.
	//
	// Parameters:
	//   - packetType: Packet type name (e.g., "ServerSendMessage")
	RecordPacketSent(packetType string)

	// ObserveDispatch records a completed request dispatch with its duration
	// and outcome.
	//
	// Parameters:
	//   - packetType: Request packet type name
	//   - duration: Time taken to produce the response
	//   - err: Error if the handler failed, nil if successful
	ObserveDispatch(packetType string, duration time.Duration, err error)
}
