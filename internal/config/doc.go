// SPDX-License-Identifier: MPL-2.0

// Package config loads and validates the build configuration from
// webpack.cue. Files are parsed with CUE, validated against the embedded
// #Config schema, and merged into Viper over the defaults, so a partial
// config file only overrides what it mentions.
package config
