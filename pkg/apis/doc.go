// Package apis provides API type definitions for bacboot.
//
// This package contains versioned API types:
//
//   - bootstrap: run specifications, operating modes and configuration
//     consumed by the bundle supervisor.
package apis
