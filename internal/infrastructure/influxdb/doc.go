// Package influxdb exports RoomLink fleet telemetry to InfluxDB v2.
//
// Two measurement families are written: command_events (queued,
// delivered, acknowledged counters tagged by device and command type)
// and queue_depth (pending commands per device after each change).
// Writes are non-blocking and batched; a slow or absent InfluxDB never
// stalls a command operation.
//
// The integration is optional and disabled by default.
package influxdb
