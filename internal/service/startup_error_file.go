package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrorFileName is written next to the log file when the daemon cannot start
// or has to exit.
const ErrorFileName = "startup-error.log"

// WriteStartupErrorFile records a startup error where it can be found even
// if the logger never came up. Only the most recent error is kept.
func WriteStartupErrorFile(logDir string, err error) {
	writeErrorFile(logDir, "STARTUP ERROR", err)
}

// WriteExitErrorFile records the error that made the daemon exit with code.
func WriteExitErrorFile(logDir string, code int, err error) {
	writeErrorFile(logDir, fmt.Sprintf("EXIT %d", code), err)
}

func writeErrorFile(logDir, label string, err error) {
	_ = os.MkdirAll(logDir, 0755)

	f, ferr := os.Create(filepath.Join(logDir, ErrorFileName))
	if ferr != nil {
		return
	}
	defer f.Close()

	ts := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(f, "[%s] %s\n%v\n", ts, label, err)
}
