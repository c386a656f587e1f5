// Package logging builds the slog loggers of the gateway and the CLI.
//
// Levels and formats come from the log section of the configuration file
// or from the --log-level and --log-format flags:
//
//	cfg, err := logging.Parse("debug", "json")
//	if err != nil {
//	    return err
//	}
//	cfg.Outputs = []io.Writer{os.Stderr, logFile}
//	log := logging.New(cfg)
//	log.Info("gateway ready", "services", 3)
//
// Components take a *slog.Logger through an option and fall back to Nop.
// The translators in pkg/transcode never log.
package logging
