package exception

import "errors"

// ErrRecordNotFound custom database error for failure to find record
var ErrRecordNotFound = errors.New("record not found")

// ErrNoSample returned when telemetry is queried before the first
// sample has been collected
var ErrNoSample = errors.New("no telemetry sample collected yet")
