package config

import "github.com/ayoisaiah/moodmap/internal/apperr"

var (
	errInitPaths = &apperr.Error{
		Message: "unable to resolve application paths",
	}

	errConfigOption = &apperr.Error{
		Message: "config option error",
	}

	errConfigValidation = &apperr.Error{
		Message: "config validation error",
	}

	errReadConfig = &apperr.Error{
		Message: "reading config file failed",
	}

	errWriteConfig = &apperr.Error{
		Message: "writing default config failed",
	}

	errInvalidCLIDuration = &apperr.Error{
		Message: "invalid %s duration: %v",
	}

	errInvalidTime = &apperr.Error{
		Message: "invalid %s time",
	}

	errIntervalTooShort = &apperr.Error{
		Message: "capture interval must be at least %v, got %v",
	}

	errInvalidDuration = &apperr.Error{
		Message: "%s duration must be greater than zero",
	}

	errInvalidIntensity = &apperr.Error{
		Message: "heatmap intensity must be between %v and %v, got %v",
	}

	errInvalidQuality = &apperr.Error{
		Message: "jpeg quality must be between 1 and 100, got %d",
	}

	errInvalidMaxWidth = &apperr.Error{
		Message: "maximum frame width must be greater than zero, got %d",
	}

	errEmptyCameraCmd = &apperr.Error{
		Message: "camera command cannot be empty",
	}

	errEmptyModel = &apperr.Error{
		Message: "classifier model cannot be empty",
	}

	errLoadEnv = &apperr.Error{
		Message: "unable to load environment file %s",
	}
)
