package core

// Logger logs to stdout and reports to the error tracker.
// expected args: error, map[string]interface{}, user.User (the person concerned)
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
