// Package deps reports availability of the external tools the pipeline
// shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"subcast/internal/config"
)

// Requirement defines one external binary subcast relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements builds the tool list from config. The transcriber model and
// the LLM key are runtime concerns, not binary requirements, so only the
// four executables appear here.
func Requirements(tools config.Tools) []Requirement {
	return []Requirement{
		{Name: "yt-dlp", Command: tools.YtDlp, Description: "channel listings, probes, downloads"},
		{Name: "ffmpeg", Command: tools.FFmpeg, Description: "audio extraction, burn-in, thumbnails"},
		{Name: "ffprobe", Command: tools.FFprobe, Description: "playability verification"},
		{Name: "transcriber", Command: tools.ASR, Description: "speech-to-text segments"},
	}
}

// Check evaluates each requirement against PATH.
func Check(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch {
		case cmd == "":
			status.Detail = "command not configured"
		default:
			if resolved, err := exec.LookPath(cmd); err != nil {
				status.Detail = fmt.Sprintf("binary %q not found", cmd)
			} else {
				status.Command = resolved
				status.Available = true
			}
		}
		results = append(results, status)
	}
	return results
}

// AllRequired reports whether every non-optional requirement is available.
func AllRequired(statuses []Status) bool {
	for _, status := range statuses {
		if !status.Optional && !status.Available {
			return false
		}
	}
	return true
}
