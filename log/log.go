// Package log provides the levelled log helpers shared by the commands and the webhook service.
package log

import (
	"fmt"
	"log"
	"sync/atomic"
)

var debugging atomic.Bool

// SetDebug enables or disables DEBUG level output.
func SetDebug(enabled bool) {
	debugging.Store(enabled)
}

func Debugf(format string, args ...any) {
	if debugging.Load() {
		printf("DEBUG", format, args...)
	}
}

func Infof(format string, args ...any) {
	printf("INFO", format, args...)
}

func Warnf(format string, args ...any) {
	printf("WARN", format, args...)
}

func Errorf(format string, args ...any) {
	printf("ERROR", format, args...)
}

func printf(level string, format string, args ...any) {
	log.Printf("%-5s %s", level, fmt.Sprintf(format, args...))
}
