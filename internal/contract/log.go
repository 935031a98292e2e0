package contract

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging sends structured logs to w at the given level.
func ConfigureLogging(w io.Writer, level log.Level) {
	log.SetOutput(w)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(level)
}
