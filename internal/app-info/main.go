package app_info

// NAME is the app name used for config paths and api responses
const NAME = "jetson-app"

// VERSION is the current app version
const VERSION = "1.0.0"

// DESCRIPTION is a short human readable summary of what this app does
const DESCRIPTION = "Embedded device server for ip camera discovery, " +
	"mjpeg relay, and system telemetry"
