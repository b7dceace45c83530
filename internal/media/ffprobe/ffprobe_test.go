package ffprobe

import "testing"

func TestStreamPresence(t *testing.T) {
	result := Result{Streams: []Stream{
		{CodecType: "Video", CodecName: "h264"},
		{CodecType: "audio", CodecName: "aac"},
	}}
	if !result.HasVideoStream() || !result.HasAudioStream() {
		t.Fatalf("expected both streams, got %+v", result)
	}

	videoOnly := Result{Streams: []Stream{{CodecType: "video"}}}
	if videoOnly.HasAudioStream() {
		t.Fatal("audio stream reported for video-only container")
	}
}

func TestDurationSeconds(t *testing.T) {
	cases := map[string]float64{
		"312.48": 312.48,
		"":       0,
		"nope":   0,
		"-3":     0,
	}
	for raw, want := range cases {
		result := Result{Format: Format{Duration: raw}}
		if got := result.DurationSeconds(); got != want {
			t.Errorf("DurationSeconds(%q) = %v, want %v", raw, got, want)
		}
	}
}
