package crowdfund

import "log/slog"

// Option configures a Campaign or a Factory. Options given to a Factory are
// inherited by every campaign it creates.
type Option func(*settings)

// settings holds the collaborators shared by campaigns and factories.
type settings struct {
	payout Payout
	logger *slog.Logger
}

// defaultSettings returns settings with a discarding logger and no payout sink.
func defaultSettings() settings {
	return settings{
		logger: slog.New(slog.DiscardHandler),
	}
}

func newSettings(opts []Option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithPayout sets the sink credited when a request completes.
// Without one, completed request funds simply leave the campaign balance.
func WithPayout(p Payout) Option {
	return func(s *settings) {
		s.payout = p
	}
}

// WithLogger sets the logger. A nil logger keeps the default, which discards.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}
