// Package app builds the userboard runtime from a loaded configuration.
//
// There is no package-level state: commands create one App, use its
// services and stores, and call Shutdown when done.
package app
