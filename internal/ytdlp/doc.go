// Package ytdlp shells out to yt-dlp for channel listings, single-item
// metadata probes, and downloads. All yt-dlp JSON passes through validating
// adapters because the tool emits duration as a number, a numeric string, or
// null depending on the extractor.
package ytdlp
