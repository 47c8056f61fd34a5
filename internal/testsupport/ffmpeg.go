package testsupport

// Environment variables steering the fake ffmpeg.
const (
	// FakeFFmpegModeEnv selects failure modes: "fail" exits 1 with a stderr
	// message, "empty" writes a zero-byte output, "garbage" writes output
	// without an ftyp box, "noencoders" reports no usable encoders.
	FakeFFmpegModeEnv = "RECUT_FAKE_FFMPEG_MODE"
	// FakeFFmpegSleepEnv delays the transcode by the given seconds.
	FakeFFmpegSleepEnv = "RECUT_FAKE_FFMPEG_SLEEP"
	// FakeFFmpegArgsEnv names a file that receives the argument vector of
	// every transcode, one argument per line.
	FakeFFmpegArgsEnv = "RECUT_FAKE_FFMPEG_ARGS"
	// FakeFFprobeDurationEnv overrides the reported container duration.
	FakeFFprobeDurationEnv = "RECUT_FAKE_FFPROBE_DURATION"
	// FakeFFprobeModeEnv selects "videoonly" (no audio stream) or "fail".
	FakeFFprobeModeEnv = "RECUT_FAKE_FFPROBE_MODE"
)

// FakeFFmpegScript mimics the ffmpeg invocations recut performs: capability
// probes, audio extraction, and filter-graph transcodes with -progress output.
const FakeFFmpegScript = `#!/bin/sh
mode="${RECUT_FAKE_FFMPEG_MODE:-}"
out=""
for arg in "$@"; do
  case "$arg" in
    -version)
      echo "ffmpeg version 6.1.1-recut-test Copyright (c) 2000-2023 the FFmpeg developers"
      echo "built with gcc 13"
      exit 0
      ;;
    -encoders)
      echo "Encoders:"
      if [ "$mode" != "noencoders" ]; then
        echo " V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC"
        echo " A....D aac                  AAC (Advanced Audio Coding)"
        echo " A....D libmp3lame           libmp3lame MP3 (MPEG audio layer 3)"
      fi
      exit 0
      ;;
    -filters)
      echo "Filters:"
      echo " T.C select            V->V       Select video frames to pass in output."
      echo " T.C aselect           A->A       Select audio frames to pass in output."
      echo " T.C drawtext          V->V       Draw text on top of video frames."
      exit 0
      ;;
  esac
  out="$arg"
done
if [ -n "${RECUT_FAKE_FFMPEG_ARGS:-}" ]; then
  for arg in "$@"; do echo "$arg"; done >> "$RECUT_FAKE_FFMPEG_ARGS"
fi
if [ -n "${RECUT_FAKE_FFMPEG_SLEEP:-}" ]; then
  sleep "$RECUT_FAKE_FFMPEG_SLEEP" </dev/null >/dev/null 2>&1
fi
case "$mode" in
  fail)
    echo "Error initializing complex filters." >&2
    echo "Invalid argument" >&2
    exit 1
    ;;
  empty)
    : > "$out"
    exit 0
    ;;
  garbage)
    printf 'not a movie' > "$out"
    exit 0
    ;;
esac
echo "frame=10"
echo "out_time_us=1000000"
echo "progress=continue"
echo "frame=20"
echo "out_time_us=2000000"
echo "progress=continue"
echo "out_time_us=N/A"
echo "progress=continue"
echo "frame=30"
echo "out_time_us=3000000"
echo "progress=end"
printf '\000\000\000\030ftypisom\000\000\002\000isomiso2' > "$out"
exit 0
`

// FakeFFprobeScript reports one h264 video stream and one aac audio stream.
const FakeFFprobeScript = `#!/bin/sh
duration="${RECUT_FAKE_FFPROBE_DURATION:-6.000000}"
case "${RECUT_FAKE_FFPROBE_MODE:-}" in
  fail)
    echo "Invalid data found when processing input" >&2
    exit 1
    ;;
  videoonly)
    audio=""
    ;;
  *)
    audio=',
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "sample_rate": "48000", "channels": 2, "duration": "'"$duration"'"}'
    ;;
esac
cat <<JSON
{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1280, "height": 720, "r_frame_rate": "30/1", "duration": "$duration"}$audio
  ],
  "format": {"filename": "input.mp4", "nb_streams": 2, "duration": "$duration", "size": "1024", "bit_rate": "1365", "format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
}
JSON
`
