// Package config holds the settings shared by the assistant commands.
//
// Values are resolved in order: command line flag, environment variable
// (optionally loaded from a .env file), built-in default.
package config
