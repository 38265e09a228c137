package i

// Logger is the logging surface shared by the services.
type Logger interface {
	Info(string)
	Warning(string)
	Error(string)
}
