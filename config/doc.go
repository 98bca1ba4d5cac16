// Package config handles the tool's own settings.
//
// Settings are stored in ~/.cursor-id-reset/config.json and name the target
// application, the process pattern used to find it, and how long to wait for it
// to exit. A few environment variables are layered on top.
package config
