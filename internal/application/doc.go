// Package application provides application initialization and dependency
// wiring. It receives the loaded configuration and logger by injection and
// assembles the HTTP server, keeping the main package focused on CLI parsing
// and orchestration.
package application
