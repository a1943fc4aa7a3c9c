// Package logger — единый вывод логов ocxo-ctl с префиксом и учётом quiet/verbose.
package logger

import "log"

const prefix = "ocxo-ctl: "

// Quiet при true отключает информационные сообщения (Info, Debug); Error выводится всегда.
var Quiet bool

// Verbose включает Debug (подробности каждого шага регулятора).
var Verbose bool

// Info выводит сообщение с префиксом, если Quiet == false.
func Info(format string, args ...interface{}) {
	if Quiet {
		return
	}
	log.Printf(prefix+format, args...)
}

// Debug выводит сообщение только при Verbose и без Quiet.
func Debug(format string, args ...interface{}) {
	if Quiet || !Verbose {
		return
	}
	log.Printf(prefix+format, args...)
}

// Error выводит сообщение об ошибке всегда.
func Error(format string, args ...interface{}) {
	log.Printf(prefix+format, args...)
}
