// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go. The only third-party import is google/uuid for batch ids.
package services
