// Package subtitles implements the SRT text format and the display policy
// applied to translated cues before burn-in.
package subtitles
