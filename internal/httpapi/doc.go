// Package httpapi exposes the bot over HTTP. A command request becomes an
// interaction whose delivery units stream back as NDJSON events; cancel
// controls are activated through POST /interactions/cancel.
//
// Routes:
//
//	GET  /commands
//	POST /commands/{name}
//	POST /interactions/cancel
//	GET  /status, /healthz, /readyz, /metrics
//	GET  /swagger/* (built with -tags=swagger)
package httpapi
