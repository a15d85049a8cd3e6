// Package api embeds the OpenAPI description of the bot's HTTP surface.
// It is served at /openapi.yaml by the ops server.
package api

import _ "embed"

// OpenAPI contains the raw bytes of openapi.yaml, embedded at compile time.
// Serving it from the binary means the document and the running code are always in sync.
//
//go:embed openapi.yaml
var OpenAPI []byte
