// SPDX-License-Identifier: MIT
package transport

import (
	"strconv"

	"github.com/rs/zerolog"

	"wavescope/internal/analysis"
	applog "wavescope/internal/log"
)

// LoggingTransport implements the Transport interface by logging each
// descriptor as one structured line.
type LoggingTransport struct {
	logger zerolog.Logger
}

// NewLoggingTransport creates a transport writing through the application
// logger.
func NewLoggingTransport() *LoggingTransport {
	applog.Debug("Transport: Using LoggingTransport")
	return &LoggingTransport{logger: applog.Logger()}
}

// Send logs descriptors and feed messages; any other value is logged
// verbatim.
func (lt *LoggingTransport) Send(data any) error {
	switch v := data.(type) {
	case Message:
		lt.logger.Info().
			Uint64("seq", v.Seq).
			Str("frequency", formatHz(v.FrequencyHz)).
			Str("amplitude", formatAmplitude(v.Amplitude)).
			Str("level", formatDb(v.LevelDb)).
			Msg("stats")
	case analysis.Descriptor:
		lt.logger.Info().
			Str("frequency", formatHz(v.FrequencyHz)).
			Str("amplitude", formatAmplitude(v.Amplitude)).
			Str("level", formatDb(v.LevelDb)).
			Msg("stats")
	default:
		lt.logger.Info().Interface("data", v).Msg("stats")
	}
	return nil // Logging transport never fails to "send"
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)

func formatHz(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + " Hz"
}

func formatAmplitude(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func formatDb(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + " dB"
}
