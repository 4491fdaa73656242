package pkg

import (
	"io"
	"log"
	"os"
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelErrOnly
	LogLevelDebug
)

var (
	info_logger  = log.New(os.Stdout, "INFO: ", log.Lshortfile|log.LstdFlags)
	error_logger = log.New(os.Stderr, "ERROR: ", log.Lshortfile|log.LstdFlags)
	fatal_logger = log.New(os.Stderr, "FATAL: ", log.Lshortfile|log.LstdFlags)
	warn_logger  = log.New(os.Stdout, "WARN: ", log.Lshortfile|log.LstdFlags)
	debug_logger = log.New(os.Stdout, "DEBUG: ", log.Lshortfile|log.LstdFlags)
)

var log_level = LogLevelErrOnly

func SetLogLevel(level LogLevel) {
	log_level = level

	err_out, out := io.Discard, io.Discard
	switch level {
	case LogLevelErrOnly:
		err_out = os.Stderr
	case LogLevelDebug:
		err_out = os.Stderr
		out = os.Stdout
	}

	error_logger.SetOutput(err_out)
	fatal_logger.SetOutput(err_out)
	info_logger.SetOutput(out)
	warn_logger.SetOutput(out)
	debug_logger.SetOutput(out)
}

func GetLogLevel() LogLevel { return log_level }

var (
	InfoLog  = info_logger.Println
	ErrorLog = error_logger.Println
	FatalLog = fatal_logger.Fatalln
	WarnLog  = warn_logger.Println
	DebugLog = debug_logger.Println
)
