// Package orchestrator ties the form catalog, answer storage, renderers and
// themes together. It owns the submission workflows: validating and saving a
// draft, listing a form's entries newest first, reading one back, deleting it
// after confirmation, and rendering pages with the selected theme.
//
// User-facing failures carry the message to show: validation failures
// "Fill in all required fields (*)" and storage failures "Error, try later".
// When a flash.Message is configured the orchestrator shows those messages
// itself.
package orchestrator
