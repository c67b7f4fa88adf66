// Package config provides configuration for the Connect Four server.
//
// Settings are read from environment variables, optionally seeded from a
// .env file. Command-line flags in package main default to these values.
//
// Variables:
//
//	C4_HOST, C4_PORT       listen address (localhost:8080)
//	C4_DEBUG               development logging
//	C4_BASE_URL            API used by the MCP tools
//	C4_WAITING_TTL         how long an unanswered game stays open (30m)
//	C4_IDLE_TTL            how long an untouched game stays open (24h)
//	C4_CLEANUP_INTERVAL    how often stale games are swept (5m)
//	NGROK_ENABLED, NGROK_AUTHTOKEN, NGROK_DOMAIN
//	C4_OTEL_ENDPOINT       OTLP/HTTP trace endpoint; tracing is off when empty
//	C4_SERVICE_NAME        service name reported to the trace backend
//
// Usage:
//
//	settings, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	addr := settings.Addr()
package config
