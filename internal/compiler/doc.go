// Package compiler turns declarative CUE symbol specs into Definition
// records for the builtin and plugin namespaces. Builtin tables -
// attributes, option defaults, numeric hints, message texts - are
// declared in .cue files and contributed to a table at startup or
// module load, keeping the Go code free of hand-maintained tables.
package compiler
