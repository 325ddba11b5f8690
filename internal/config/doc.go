// Package config provides minui settings.
//
// Settings are resolved from three sources, later ones overriding earlier:
//
//	built-in defaults ──▶ settings file (TOML or YAML) ──▶ MINUI_* environment
//
// Values are read through typed section accessors. A value of the wrong
// type falls back to its default and is recorded in ConfigErrors, so a bad
// settings file never stops the program but is still reported.
//
// # Basic Usage
//
//	cfg := config.New(config.WithFile("minui.toml"))
//	if err := cfg.Load(ctx); err != nil {
//		return err
//	}
//	log := logging.New(cfg.LoggerConfig(os.Stderr))
//	d := cfg.Dispatch()
//
// # Environment
//
// MINUI_LOG_LEVEL and MINUI_LOG_PREFIX set the logging section. Any other
// MINUI_<SECTION>_<SETTING> variable is mapped by name, so
// MINUI_DISPATCH_HANDLER_TIMEOUT sets dispatch.handlerTimeout.
package config
