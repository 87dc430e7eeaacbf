package gologger

import (
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

const (
	ServiceLoggerName = "issuance"
	MonitorLoggerName = "issuance.guardian"
	StoreLoggerName   = "issuance.store"
)

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// Named returns the provider's logger for name, falling back to logger and
// then to a nop logger.
func Named(name string, provider glog.LoggerProvider, logger glog.Logger) glog.Logger {
	resolvedProvider, resolved := Resolve(name, provider, logger)
	if resolvedProvider != nil {
		if named := resolvedProvider.GetLogger(strings.TrimSpace(name)); named != nil {
			return glog.Ensure(named)
		}
	}
	return glog.Ensure(resolved)
}

// ForComponents resolves the service, guardian monitor and store loggers in
// one call.
func ForComponents(provider glog.LoggerProvider, logger glog.Logger) (service, monitor, store glog.Logger) {
	return Named(ServiceLoggerName, provider, logger),
		Named(MonitorLoggerName, provider, logger),
		Named(StoreLoggerName, provider, logger)
}
