// Package services provides cross-cutting helpers shared by the pipeline and
// the external collaborators: context carriers for structured logging and the
// sentinel-error taxonomy used to classify stage failures.
package services
