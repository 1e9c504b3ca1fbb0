package logging

import "go.uber.org/zap/zapcore"

// TraceLevel is a custom level below Debug for ultra-verbose logging (parse
// internals, per-node scoring). Debug is -1, so Trace sits at -2.
const TraceLevel = zapcore.Level(-2)

// LevelFromString parses a level name into a zapcore.Level, additionally
// recognizing "trace" (zapcore has no such level itself).
func LevelFromString(level string) (zapcore.Level, error) {
	if level == "trace" {
		return TraceLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}
