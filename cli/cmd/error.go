package cmd

import "github.com/ardnew/interp/interp"

// Command failures. They share [interp.Error] so attributes reach the log.
var (
	ErrYAMLMarshal = interp.NewError("marshal YAML")
	ErrReadVars    = interp.NewError("read variables")
	ErrInvalidVar  = interp.NewError("invalid variable (want NAME=VALUE)")
	ErrWriteConfig = interp.NewError("write configuration file")
	ErrFileExists  = interp.NewError("file exists (use --force to overwrite)")
)
