package config

const (
	defaultWorkDir             = "~/.cache/recut/work"
	defaultStateDir            = "~/.local/share/recut"
	defaultLogDir              = "~/.local/share/recut/logs"
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultBusyPolicy          = BusyPolicyWait
	defaultLoadTimeoutSeconds  = 30
	defaultMarkerText          = "Edited"
	defaultMinFreeMiB          = 512
	defaultTranscriptionModel  = "whisper-1"
	defaultTranscriptionTmo    = 300
	defaultWhisperXModel       = "large-v3-turbo"
	defaultEnhanceModel        = "gpt-4o-mini"
	defaultEnhanceTemperature  = 0.7
	defaultAligner             = AlignerSet
	defaultSessionRetention    = 72
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultTranscriptionEngine = BackendOpenAI
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:  defaultWorkDir,
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Engine: Engine{
			FFmpegBinary:       defaultFFmpegBinary,
			FFprobeBinary:      defaultFFprobeBinary,
			BusyPolicy:         defaultBusyPolicy,
			LoadTimeoutSeconds: defaultLoadTimeoutSeconds,
			MarkerText:         defaultMarkerText,
			MinFreeMiB:         defaultMinFreeMiB,
		},
		Transcription: Transcription{
			Backend:        defaultTranscriptionEngine,
			Model:          defaultTranscriptionModel,
			TimeoutSeconds: defaultTranscriptionTmo,
			WhisperXModel:  defaultWhisperXModel,
		},
		Enhance: Enhance{
			Model:       defaultEnhanceModel,
			Temperature: defaultEnhanceTemperature,
		},
		Transcript: Transcript{
			Aligner: defaultAligner,
		},
		Session: Session{
			RetentionHours: defaultSessionRetention,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
