// Package config loads runtime configuration from the process environment,
// an optional KEY=VALUE env file, an optional YAML settings file, and CLI
// overrides, with precedence: CLI overrides > live environment > env file >
// settings file > defaults. It validates and coerces every variable against
// a fixed schema and exposes one immutable, nested Config to the rest of the
// application. Invalid input yields a ValidationError naming every offending
// variable; there are no partial successes.
package config
