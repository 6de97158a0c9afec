package config

import (
	"fmt"

	"github.com/loykin/httpstep/internal/common"
	"github.com/loykin/httpstep/internal/util"
)

// ParseLogLevel accepts error, warn(ing), info (default) and debug.
func ParseLogLevel(s string) (common.LogLevel, error) {
	switch util.TrimAndLower(s) {
	case "error":
		return common.LogLevelError, nil
	case "warn", "warning":
		return common.LogLevelWarn, nil
	case "info", "":
		return common.LogLevelInfo, nil
	case "debug":
		return common.LogLevelDebug, nil
	default:
		return common.LogLevelInfo, fmt.Errorf("invalid logging level: %s (valid: error, warn, info, debug)", s)
	}
}

// NewLogger builds a logger from the logging section without installing it.
func (l LoggingConfig) NewLogger() (*common.Logger, error) {
	level, err := ParseLogLevel(l.Level)
	if err != nil {
		return nil, err
	}
	format := util.TrimAndLower(l.Format)
	useColor := format == "color" || format == "colour"
	if l.Color != nil {
		useColor = *l.Color
	}

	var logger *common.Logger
	switch format {
	case "json":
		logger = common.NewJSONLogger(level)
	case "text", "", "color", "colour":
		if useColor {
			logger = common.NewColorLogger(level)
		} else {
			logger = common.NewLogger(level)
		}
	default:
		return nil, fmt.Errorf("invalid logging format: %s (valid: text, json, color)", l.Format)
	}

	mask := true
	if l.MaskSensitive != nil {
		mask = *l.MaskSensitive
	}
	logger.EnableMasking(mask)
	return logger, nil
}

// SetupLogging installs the configured logger as the global default.
func (c *StepFile) SetupLogging() error {
	logger, err := c.Logging.NewLogger()
	if err != nil {
		return err
	}
	common.SetDefaultLogger(logger)
	logger.Debug("logging configured",
		"level", util.TrimWithDefault(util.TrimAndLower(c.Logging.Level), "info"),
		"format", util.TrimWithDefault(util.TrimAndLower(c.Logging.Format), "text"))
	return nil
}
