// Package mqtt publishes RoomLink fleet events to an MQTT broker.
//
// The broker is an optional integration surface: when enabled, every
// command lifecycle transition (queued, delivered, acknowledged) is
// published under the roomlink/ topic hierarchy so dashboards and other
// services can follow the fleet without polling the HTTP API. The core
// never subscribes; this is a one-way event feed.
//
// Publication is best-effort and never blocks a command operation: the
// EventPublisher drops events with a warning when the broker is away.
package mqtt
