/*
Package config manages dutree configuration: environment variables,
defaults and validation of everything the core pipeline consumes.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Environment variables:

	DUTREE_WORKERS     Number of concurrent walk workers
	DUTREE_DEPTH       Display depth (0 for unlimited)
	DUTREE_AGGR        Aggregation threshold, N[KMGT] (binary units)
	DUTREE_EXCLUDE     Comma-separated exclude patterns
	DUTREE_OUTPUT      Output format: tree|json|yaml
	DUTREE_RATE_LIMIT  Filesystem operations per second (0 unlimited)
	DUTREE_NO_COLOR    Disable colored output
	DUTREE_VERBOSE     Verbosity level
	LS_COLORS          Color specification, as used by ls

Default values:

	Workers:  number of CPU cores
	Depth:    0 (unlimited)
	Aggr:     0 (no aggregation)
	Output:   "tree"

All validation happens at load time, before any traversal starts: a bad
exclude pattern or threshold never reaches the walker.
*/
package config
