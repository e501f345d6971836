// Package types holds shared identity values for the webasset module.
package types

// Version is the canonical project version.
// The CLI, IPC frame format, and notify event payloads share this version.
const Version = "0.1.0"

// AppID is the default application identifier used for the on-disk cache
// directory under the platform cache root.
const AppID = "webasset"
