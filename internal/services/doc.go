// Package services defines the shared error taxonomy and context annotations
// used across collaborator clients and the workflow runner.
package services
