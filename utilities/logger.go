package utilities

import (
	"io"
	"log"
	"os"
	"strings"
	"time"
)

const logFlags = log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile

var (
	InfoLogger  = log.New(os.Stdout, "\033[32m[INFO]\033[0m ", logFlags)
	WarnLogger  = log.New(os.Stdout, "\033[33m[WARN]\033[0m ", logFlags)
	ErrorLogger = log.New(os.Stderr, "\033[31m[ERROR]\033[0m ", logFlags)
	DebugLogger = log.New(io.Discard, "\033[36m[DEBUG]\033[0m ", logFlags)

	debugEnabled bool
)

// InitLogger configura os loggers. Debug só é emitido com level "debug".
func InitLogger(level string) {
	log.SetFlags(logFlags)

	InfoLogger.SetOutput(os.Stdout)
	WarnLogger.SetOutput(os.Stdout)
	ErrorLogger.SetOutput(os.Stderr)

	debugEnabled = strings.EqualFold(level, "debug")
	if debugEnabled {
		DebugLogger.SetOutput(os.Stdout)
	} else {
		DebugLogger.SetOutput(io.Discard)
	}
}

// SetOutput redireciona os loggers para w (usado nos testes e pela CLI).
// Debug só segue para w se InitLogger o tiver habilitado.
func SetOutput(w io.Writer) {
	InfoLogger.SetOutput(w)
	WarnLogger.SetOutput(w)
	ErrorLogger.SetOutput(w)
	if debugEnabled {
		DebugLogger.SetOutput(w)
	} else {
		DebugLogger.SetOutput(io.Discard)
	}
}

// LogRequest registra informações sobre a requisição HTTP
func LogRequest(method, path, remoteAddr string, status int, duration time.Duration) {
	InfoLogger.Printf("%s %s %s %d %v", method, path, remoteAddr, status, duration)
}

// LogError registra erros com contexto
func LogError(err error, context string) {
	ErrorLogger.Printf("%s: %v", context, err)
}

// LogWarn registra situações recuperáveis
func LogWarn(format string, v ...interface{}) {
	WarnLogger.Printf(format, v...)
}

// LogDebug registra informações de debug
func LogDebug(format string, v ...interface{}) {
	DebugLogger.Printf(format, v...)
}

// LogInfo registra informações gerais
func LogInfo(format string, v ...interface{}) {
	InfoLogger.Printf(format, v...)
}
