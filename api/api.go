// Package api embeds the OpenAPI description of the gig board HTTP API.
// The server serves it at /openapi.yaml so the document and the running
// code ship together.
package api

import _ "embed"

// OpenAPI contains the raw bytes of openapi.yaml, embedded at compile time.
//
//go:embed openapi.yaml
var OpenAPI []byte
