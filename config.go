package binarchive

import (
	"github.com/aalhour/binarchive/internal/archive"
	"github.com/aalhour/binarchive/internal/logging"
	"github.com/aalhour/binarchive/internal/primitive"
	"github.com/aalhour/binarchive/internal/typetable"
)

// Config gathers the options Serialize and Deserialize need: the
// optimization mode for scalar/array encoding, strict-vs-tolerant type
// resolution, an optional logger, and an optional fallback resolver for a
// type name the Registry does not know. A zero Config is never used
// directly; construct one with NewConfig.
//
// Reference: grounded on this module's ancestor key/value store's
// internal/options default-then-override construction idiom (field
// defaults set before any option runs, options layered on top) adapted
// from a parsed on-disk file to functional options, since a library has
// no on-disk config of its own.
type Config struct {
	mode             primitive.Mode
	tolerant         bool
	logger           logging.Logger
	fallbackResolver typetable.Resolver
	versionOverrides *archive.VersionOverrides
}

// Option configures a Config.
type Option func(*Config)

// NewConfig builds a Config with binarchive's defaults: Speed-optimized
// encoding, strict (non-tolerant) type resolution, and a discard logger.
func NewConfig(opts ...Option) *Config {
	c := &Config{
		mode:     primitive.Speed,
		tolerant: false,
		logger:   logging.Discard,
	}

	for _, opt := range opts {
		opt(c)
	}

	if logging.IsNil(c.logger) {
		c.logger = logging.Discard
	}

	return c
}

// WithSizeMode selects the Size optimization axis (each integer or char
// written as LEB128 when that is shorter than its native width) over the
// default Speed axis (native fixed widths). Array lengths are LEB128 in
// both modes.
func WithSizeMode() Option {
	return func(c *Config) { c.mode = primitive.Size }
}

// WithTolerantResolution enables version-tolerant type resolution: a
// type name unresolved by exact match is retried by its simple (package
// path stripped) name, then by the fallback resolver if one is set.
func WithTolerantResolution() Option {
	return func(c *Config) { c.tolerant = true }
}

// WithFallbackResolver sets the resolver tried last, after exact and
// simple-name resolution both fail. It is consulted only when
// WithTolerantResolution is enabled.
func WithFallbackResolver(r typetable.Resolver) Option {
	return func(c *Config) { c.fallbackResolver = r }
}

// WithLogger attaches a logger for the archive core's own diagnostic
// messages (unknown types, version-too-new rejections, version-tolerant
// resolution fallbacks).
func WithLogger(l logging.Logger) Option {
	return func(c *Config) { c.logger = l }
}

// WithVersionOverrides pins specific registered types to an older wire
// version than their current MaxSupportedVersion, so archives this
// process writes can still be read by an older deployed reader during a
// rolling upgrade.
func WithVersionOverrides(v *archive.VersionOverrides) Option {
	return func(c *Config) { c.versionOverrides = v }
}
