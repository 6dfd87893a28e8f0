package medcrypt

import "github.com/sirupsen/logrus"

// Option customizes a Cipher at construction time.
type Option func(c *Cipher)

// WithLogger sets the logger used for configuration warnings. The default is
// a logrus logger writing to stderr.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Cipher) {
		c.logger = logger
	}
}
