package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
)

const timestampFormat = "2006-01-02 15:04:05"

// Log is usable before Init. Init configures it in place, so entries taken from it
// earlier pick up the new settings.
var Log = logrus.New()

type Options struct {
	Level  string
	Format string
	// Output is stdout, stderr or a file path opened for append.
	Output string
}

func Init(opts Options) error {
	out, err := openOutput(opts.Output)
	if err != nil {
		return err
	}
	Log.SetOutput(out)

	lvl, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if opts.Format == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timestampFormat})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: timestampFormat})
	}
	return nil
}

func openOutput(output string) (io.Writer, error) {
	switch output {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	return os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log.WithFields(fields)
}

// Component tags every line with the subsystem that wrote it.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}

// Gorm routes gorm's warnings and slow-query reports through Log. Record-not-found
// is expected by the repositories and never logged.
func Gorm(slowThreshold time.Duration) gormlogger.Interface {
	level := gormlogger.Warn
	if Log.IsLevelEnabled(logrus.DebugLevel) {
		level = gormlogger.Info
	}
	return gormlogger.New(Component("gorm"), gormlogger.Config{
		SlowThreshold:             slowThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

func Info(args ...interface{}) {
	Log.Info(args...)
}

func Error(args ...interface{}) {
	Log.Error(args...)
}

func Warn(args ...interface{}) {
	Log.Warn(args...)
}

func Debug(args ...interface{}) {
	Log.Debug(args...)
}

func Fatal(args ...interface{}) {
	Log.Fatal(args...)
}
