// Package timeouts defines shared timeout constants used across services.
package timeouts

import "time"

// Shutdown limits how long telemetry may spend flushing on exit.
const Shutdown = 5 * time.Second

// GuardRelease caps releasing a pending guard after its run ends, including
// runs whose context was cancelled.
const GuardRelease = 2 * time.Second
