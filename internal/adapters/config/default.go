package config

import _ "embed"

// DefaultPipeline is the pipeline written by "letterpress init".
//
//go:embed default.yaml
var DefaultPipeline []byte
