package models

import "time"

// BundleContext identifies the application currently being served.
// It is materialized once per successful start and replaced wholesale on the
// next one; the asset server reads it but never mutates it.
type BundleContext struct {
	AppName string `json:"appName"`
	// WebRoot contains the source index.html.
	WebRoot string `json:"webRoot"`
	// OutputRoot contains the compiled entry script.
	OutputRoot string `json:"outputRoot"`
	// AssetRoot contains the built asset bundle.
	AssetRoot string `json:"assetRoot"`

	CreatedAt time.Time `json:"createdAt"`
}

// ServerHandle describes a bound preview server session.
type ServerHandle struct {
	ID   string `json:"id"`
	Addr string `json:"addr"`
	Port int    `json:"port"`
	// URL is the loopback endpoint handed to the browser.
	URL string `json:"url"`
}
