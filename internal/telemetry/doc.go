// Package telemetry holds the Prometheus collectors and OpenTelemetry
// helpers shared by the renderer, the hot reload reconciler and the dev
// server.
package telemetry
