package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile   = flag.String("log-file", "", "Write logs to this file")
	flagMode      = flag.String("mode", "", "Conversion: triangles, tessellate, keep or lines")
	flagAttribute = flag.String("attr", "", "Color attribute: none, texcoord or normal")
	flagEncoding  = flag.String("name-encoding", "", "Code page of OBJ names")
	flagOutput    = flag.String("out", "", "Output directory")
	flagWorkers   = flag.Int("workers", 0, "Batch worker count")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag command-line arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagMode != "" {
		cfg.Mesh.Mode = *flagMode
	}
	if *flagAttribute != "" {
		cfg.Mesh.Attribute = *flagAttribute
	}
	if *flagEncoding != "" {
		cfg.Input.NameEncoding = *flagEncoding
	}
	if *flagOutput != "" {
		cfg.Output.Dir = *flagOutput
	}
	if *flagWorkers > 0 {
		cfg.Batch.Workers = *flagWorkers
	}
}
