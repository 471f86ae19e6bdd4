// Package simlog wires zerolog the way the teacher's server package does
// (a package-level logger reached via github.com/rs/zerolog/log), but
// configured from SIM_PARAMS instead of hardcoded: console output always,
// optionally tee'd to a file, both independently leveled.
package simlog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"marketsim/internal/book"
	"marketsim/internal/config"
)

// Setup installs the global zerolog logger per SIM_PARAMS' log_file,
// log_filename, log_level, and console_log_level. Returns a closer to
// release the log file, if one was opened; nil if none was.
func Setup(p config.SimParams) (io.Closer, error) {
	consoleLevel := parseLevel(p.ConsoleLogLevel)
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	consoleLeveled := zerolog.New(levelWriter{console, consoleLevel}).With().Timestamp().Logger()

	if !p.LogFile {
		log.Logger = consoleLeveled
		return nil, nil
	}

	filename := p.LogFilename
	if filename == "" {
		filename = "marketsim.log"
	}
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	fileLevel := parseLevel(p.LogLevel)
	multi := zerolog.MultiLevelWriter(
		levelWriter{console, consoleLevel},
		levelWriter{f, fileLevel},
	)
	log.Logger = zerolog.New(multi).With().Timestamp().Logger()
	return f, nil
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// levelWriter drops writes below its own level, letting two sinks with
// different thresholds share one zerolog.Logger via MultiLevelWriter.
type levelWriter struct {
	w        io.Writer
	minLevel zerolog.Level
}

func (lw levelWriter) Write(p []byte) (int, error) {
	return lw.w.Write(p)
}

func (lw levelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < lw.minLevel {
		return len(p), nil
	}
	return lw.w.Write(p)
}

// LogEvents emits one structured log line per book event returned by a
// Process call, the
// simulator's only consumer of events purely for observability.
func LogEvents(now float64, events []book.Event) {
	for _, e := range events {
		switch evt := e.(type) {
		case book.NewOrderEvent:
			log.Debug().
				Float64("t", now).
				Str("order_id", evt.OrderID).
				Str("side", evt.Side.String()).
				Uint64("size", evt.Size).
				Float64("price", evt.Price).
				Msg("new order resting")
		case book.CancelEvent:
			log.Debug().
				Float64("t", now).
				Str("order_id", evt.OrderID).
				Msg("order cancelled")
		case book.TradeEvent:
			log.Info().
				Float64("t", now).
				Str("trade_id", evt.TradeID).
				Float64("price", evt.Price).
				Uint64("size", evt.Size).
				Str("buy_order_id", evt.BuyOrderID).
				Str("sell_order_id", evt.SellOrderID).
				Msg("trade")
		}
	}
}
