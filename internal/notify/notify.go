package notify

import (
	"log/slog"

	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
)

// Sink 接收需要展示给用户的结果
type Sink interface {
	Notify(kind domain.NotificationKind, message string)
}

type SinkFunc func(kind domain.NotificationKind, message string)

func (f SinkFunc) Notify(kind domain.NotificationKind, message string) {
	f(kind, message)
}

// Logger 把通知写进日志，适合命令行
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (l *Logger) Notify(kind domain.NotificationKind, message string) {
	switch kind {
	case domain.NotificationError:
		l.logger.Error(message)
	case domain.NotificationWarning:
		l.logger.Warn(message)
	default:
		l.logger.Info(message)
	}
}

type fanout []Sink

// Fanout 依次转发给每个 sink，nil 会被忽略
func Fanout(sinks ...Sink) Sink {
	out := make(fanout, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (f fanout) Notify(kind domain.NotificationKind, message string) {
	for _, s := range f {
		s.Notify(kind, message)
	}
}
