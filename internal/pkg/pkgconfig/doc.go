// Package pkgconfig reads application configuration.
//
// Business code depends on the Config interface. The Viper implementation
// reads a YAML file, lets GOMONY_* environment variables override any key
// (dots become underscores, so modules.mony.enabled is
// GOMONY_MODULES_MONY_ENABLED) and can pick up a local .env file first.
package pkgconfig
