// Package messaging provides a small broker-agnostic publisher used to hand
// events to external consumers (for example the SMS gateway that delivers
// one-time codes).
//
// Supported drivers are NATS, Kafka and NSQ, selected by configuration.
package messaging
