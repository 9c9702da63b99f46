// Package bot connects chat interactions to the generation pipeline. A
// command invocation becomes a job whose output is rendered and delivered
// as units through the interaction; cancel controls are authorized against
// the invoking user.
package bot
