package internal

import "io"

// Option tunes how Run assembles the application.
type Option func(*application)

type application struct {
	config *Config
	input  io.Reader
}

// WithConfig supplies the loaded configuration. Run fails without it.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithInput overrides the operator input stream. Defaults to stdin.
func WithInput(r io.Reader) Option {
	return func(a *application) {
		a.input = r
	}
}
