// Package config loads engine configuration with viper and watches it for
// changes with fsnotify.
//
// A configuration file is YAML or TOML:
//
//	mapping_timeout: 300ms
//	leader: ","
//	keyboard:
//	  use_physical_layout: for_macos_option_modifier
//	  layout: qwerty
//	motions:
//	  case_boundaries: true
//	log:
//	  level: info
//	keymap_files: [keys.yaml]
//	script: init.lua
//
// Every key can be overridden from the environment with a MODALKEYS_
// prefix, e.g. MODALKEYS_MAPPING_TIMEOUT=1s or MODALKEYS_LOG_LEVEL=debug.
// Relative keymap and script paths are resolved against the directory of
// the configuration file.
package config
