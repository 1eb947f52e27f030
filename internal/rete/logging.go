package rete

import "go.uber.org/zap"

// Logger is the engine's structured-logging seam. It generalizes the
// teacher's package-level Debug(message string) helper (gated by the
// DEBUG env var) into an injectable zap.SugaredLogger: callers that pass
// nil to NewEngine get a no-op logger, exactly as the teacher's Debug()
// silently no-ops when DEBUG isn't set.
type Logger struct {
	z *zap.SugaredLogger
}

func newLogger(z *zap.SugaredLogger) *Logger {
	if z == nil {
		z = zap.NewNop().Sugar()
	}
	return &Logger{z: z}
}

func (l *Logger) debugw(msg string, keysAndValues ...interface{}) {
	if l == nil || l.z == nil {
		return
	}
	l.z.Debugw(msg, keysAndValues...)
}
