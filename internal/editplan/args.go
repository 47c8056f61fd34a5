package editplan

// Output target shared by every plan.
const (
	VideoCodec   = "libx264"
	AudioCodec   = "aac"
	OutputFormat = "mp4"
)

// Args returns the ffmpeg argument vector that renders plan from input to
// output. Progress is reported as key=value lines on stdout. output is
// always the final argument.
func Args(plan Plan, input, output string) []string {
	filter := plan.FilterExpression
	if filter == "" {
		filter = IdentityFilter
	}
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", input,
		"-filter_complex", filter,
		"-map", "[" + VideoLabel + "]",
		"-map", "[" + AudioLabel + "]",
		"-c:v", VideoCodec,
		"-preset", "fast",
		"-crf", "22",
		"-pix_fmt", "yuv420p",
		"-c:a", AudioCodec,
		"-b:a", "128k",
		"-movflags", "+faststart",
		"-f", OutputFormat,
		"-progress", "pipe:1",
		"-nostats",
		output,
	}
}
