// Package v1alpha1 contains the types bacboot runs on: operating modes,
// run specifications, working-copy state and configuration.
package v1alpha1
