// SPDX-License-Identifier: MIT
// Package: lvspline/datatable
//
// options.go - functional options for New.
//
// Contract:
//   • Options are functional (type Option func(*tableConfig)).
//   • Options only touch the config; New copies the result into the Table.

package datatable

// Option customizes a Table at construction time.
type Option func(*tableConfig)

// tableConfig holds the resolved construction parameters.
type tableConfig struct {
	allowDuplicates bool
}

// WithAllowDuplicates keeps samples whose input vector equals an existing one.
// The default policy rejects them with ErrDuplicateSample.
func WithAllowDuplicates() Option {
	return func(c *tableConfig) { c.allowDuplicates = true }
}

// newTableConfig applies opts over the defaults; nil options are skipped.
func newTableConfig(opts ...Option) tableConfig {
	var c tableConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	return c
}
