package main

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/9seconds/ipstack/ipstack"
)

type logger struct {
	requestLog  zerolog.Logger
	responseLog zerolog.Logger
}

func (l *logger) MethodNotAllowed(method string) {
	l.requestLog.Error().Str("method", method).Msg("Method is not allowed")
}

func (l *logger) Retry(url string, statusCode int) {
	l.responseLog.Warn().Str("url", url).Int("status_code", statusCode).Msg("Server has failed, retrying")
}

func (l *logger) RetryFailed(url string, statusCode int, text string) {
	l.responseLog.Error().Str("url", url).Int("status_code", statusCode).Msg("Retry has failed")
	l.responseLog.Info().Str("url", url).Str("text", text).Msg("")
}

func (l *logger) DecodeFailure(url string, statusCode int, err error) {
	l.responseLog.Error().Str("url", url).Int("status_code", statusCode).Err(err).Msg("Cannot decode response")
}

func (l *logger) EnvelopeFailure(url string) {
	l.responseLog.Error().Str("url", url).Msg("Incorrect response envelope")
}

func (l *logger) APIFailure(url string, code int, message string) {
	l.responseLog.Error().Str("url", url).Int("code", code).Str("message", message).Msg("")
}

func (l *logger) NetworkFailure(url string, err error) {
	l.requestLog.Error().Str("url", url).Err(err).Msg("Cannot reach ipstack")
}

func newLogger(w io.Writer) ipstack.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	return &logger{
		requestLog:  zerolog.New(w).With().Timestamp().Str("event_name", "request").Logger(),
		responseLog: zerolog.New(w).With().Timestamp().Str("event_name", "response").Logger(),
	}
}
