// Package config loads vhub's YAML configuration file, validates it, and
// keeps a live, hot-reloadable copy behind SafeConfig.
//
// # Basic usage
//
//	mgr, err := config.NewManager("/etc/vhub/config.yaml", logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mgr.Close()
//
//	cfg := mgr.Config().Get()
//	listenOn(cfg.Listen)
//
//	for updated := range mgr.Subscribe() {
//	    log.Printf("config reloaded, idle timeout now %s", updated.Timeouts.IdleTimeout)
//	}
//
// Config.Validate runs on initial load and again on every reload; a file
// edited into an invalid state is logged and ignored, leaving the previous
// valid config live.
package config
