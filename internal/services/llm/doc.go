// Package llm is a minimal chat-completions client used for subtitle
// translation and metadata drafting. Requests always ask for a JSON object
// response at temperature zero; transient HTTP failures are retried with
// exponential backoff.
package llm
