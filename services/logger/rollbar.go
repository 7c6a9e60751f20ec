package logsvc

import (
	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/user"
)

// RollbarLogger reports to Rollbar (when enabled) and writes to a zap logger.
type RollbarLogger struct {
	out *zap.SugaredLogger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(out *zap.SugaredLogger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(!conf.Debug && !conf.TestMode && conf.RollbarToken != "")
	return &RollbarLogger{out: out}
}

// NewZap builds the process logger: human-readable in debug, JSON otherwise.
func NewZap(conf *core.Config) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	switch {
	case conf.TestMode:
		l = zap.NewNop()
	case conf.Debug:
		l, err = zap.NewDevelopment()
	default:
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return l.Sugar().With("app", conf.AppName, "env", conf.Env), nil
}

// Named returns a logger for a component, sharing the Rollbar configuration.
func (l RollbarLogger) Named(name string) *RollbarLogger {
	return &RollbarLogger{out: l.out.Named(name)}
}

func (l RollbarLogger) Zap() *zap.SugaredLogger {
	return l.out
}

// prepare extracts the user.User among args as the Rollbar person.
func (l RollbarLogger) prepare(msg string, args []interface{}) (report []interface{}, fields []interface{}) {
	var usr *user.User
	report = append(make([]interface{}, 0, len(args)+1), msg)
	for _, arg := range args {
		switch a := arg.(type) {
		case user.User:
			if usr == nil {
				usr = &a
				fields = append(fields, "user", a.ID)
			}
		case error:
			report = append(report, a)
			fields = append(fields, "error", a)
		case map[string]interface{}:
			report = append(report, a)
			for k, v := range a {
				fields = append(fields, k, v)
			}
		default:
			report = append(report, a)
		}
	}
	if usr != nil {
		rollbar.SetPerson(usr.ID, usr.Name, usr.Email)
	} else {
		rollbar.ClearPerson()
	}
	return report, fields
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	report, fields := l.prepare(msg, args)
	rollbar.Debug(report...)
	l.out.Debugw(msg, fields...)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	report, fields := l.prepare(msg, args)
	rollbar.Info(report...)
	l.out.Infow(msg, fields...)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	report, fields := l.prepare(msg, args)
	rollbar.Warning(report...)
	l.out.Warnw(msg, fields...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	report, fields := l.prepare(msg, args)
	rollbar.Error(report...)
	l.out.Errorw(msg, fields...)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	report, fields := l.prepare(msg, args)
	rollbar.Critical(report...)
	rollbar.Wait()
	l.out.Fatalw(msg, fields...)
}
