package providers

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"kcald/internal/structures"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeGet
	TypePost
	TypeAi
)

// Logger fans log lines out to per-channel files: application lifecycle,
// HTTP access (split by verb the way the dashboards expect), and AI calls.
type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

func GetLogTypeByRequestType(method string) TypeEnum {
	if method == "POST" {
		return TypePost
	}
	return TypeGet
}

type LogProvider struct {
	loggers map[TypeEnum]*zerolog.Logger
	files   []*os.File
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, err
	}
	mode := os.FileMode(conf.Logger.Mode)

	lp := &LogProvider{loggers: make(map[TypeEnum]*zerolog.Logger)}

	open := func(name string) (io.Writer, error) {
		f, err := os.OpenFile(filepath.Join(conf.Logger.Dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, mode)
		if err != nil {
			return nil, err
		}
		lp.files = append(lp.files, f)
		if conf.Debug {
			return io.MultiWriter(f, zerolog.ConsoleWriter{Out: os.Stderr}), nil
		}
		return f, nil
	}

	channels := []struct {
		file  string
		name  string
		types []TypeEnum
	}{
		{"app.log", "app", []TypeEnum{TypeApp}},
		{"access.log", "access", []TypeEnum{TypeGet, TypePost}},
		{"ai.log", "ai", []TypeEnum{TypeAi}},
	}
	for _, ch := range channels {
		w, err := open(ch.file)
		if err != nil {
			lp.Close()
			return nil, err
		}
		logger := zerolog.New(w).Level(level).With().Timestamp().Str("channel", ch.name).Logger()
		for _, t := range ch.types {
			lp.loggers[t] = &logger
		}
	}

	return lp, nil
}

func (lp *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	lp.loggers[t].Error().Msgf(format, args...)
}

func (lp *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	lp.loggers[t].Warn().Msgf(format, args...)
}

func (lp *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	lp.loggers[t].Debug().Msgf(format, args...)
}

func (lp *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	lp.loggers[t].Info().Msgf(format, args...)
}

func (lp *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	lp.loggers[t].Fatal().Msgf(format, args...)
}

func (lp *LogProvider) Close() {
	for _, f := range lp.files {
		_ = f.Close()
	}
	lp.files = nil
}
