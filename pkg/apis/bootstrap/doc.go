// Package bootstrap provides the bootstrap API types.
//
// This package contains versioned API types for bacboot:
//
//   - v1alpha1: Current API version
package bootstrap
