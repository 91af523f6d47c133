package models

// DeviceState represents the current phase of a preview device's lifecycle
type DeviceState string

const (
	StateIdle     DeviceState = "IDLE"
	StateStarting DeviceState = "STARTING"
	StateRunning  DeviceState = "RUNNING"
	StateStopping DeviceState = "STOPPING"
)

// AppPackage describes the web application a device is asked to run.
type AppPackage struct {
	// Name is the logical application name, used for logging and display.
	Name string `json:"name"`
	// WebRoot is the source web directory containing index.html.
	WebRoot string `json:"webRoot"`
	// MainPath is the entrypoint handed to the compiler.
	MainPath string `json:"mainPath"`
}

// StartOptions tune a single start attempt.
type StartOptions struct {
	Minify        bool `json:"minify"`
	EnableAsserts bool `json:"enableAsserts"`
}
