// Package config provides configuration loading for modbuild.
//
// The configuration is stored in build_config.json at the project root. A
// missing file is created with the built-in defaults; a malformed file is
// reported and the defaults are used instead. Loading never aborts a run.
//
// # Configuration File Structure
//
//	{
//	  "enable_archiving": true,
//	  "archive_every_build": true,
//	  "archive_directory": "build_archive",
//	  "comment": "all, universal, puzzle, quilt",
//	  "build_targets": ["universal"],
//	  "build_naming_scheme": {
//	    "universal": "${mod_name}-${version}-universal.jar",
//	    "puzzle": "${mod_name}-${version}-puzzle.jar",
//	    "quilt": "${mod_name}-${version}-quilt.jar"
//	  },
//	  "custom_copy_paths": [
//	    {"targets": ["puzzle"], "destination": "../instance/mods"}
//	  ]
//	}
//
// build_naming_scheme is merged key by key onto the defaults; every other key
// replaces its default wholesale. build_targets also accepts the bare string
// "all".
//
// Optional keys: metrics_file (Prometheus textfile export), s3_mirror
// (remote archive copy) and serve_address (archive browser listen address).
//
// # Usage
//
//	cfg, err := config.Load(root, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, t := range cfg.Targets() {
//	    fmt.Println(t.Name, cfg.TargetDir(t))
//	}
package config
