// Package flagx lets several independent flag sets share one command line.
//
// The config layers each parse only the flags they own: FilterArgs extracts
// them from the full argument list so an unknown flag belonging to another
// layer never makes a parse fail.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// ConfigFileFlags are the flags naming the JSON config file.
var ConfigFileFlags = []string{"-c", "-config", "--config"}

// FilterArgs returns the subset of args made of allowed flags and their values.
//
// Both "-f value" and "-f=value" forms are recognised. A token that follows an
// allowed flag is taken as its value unless it starts with '-'.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		if name, _, hasValue := strings.Cut(arg, "="); hasValue {
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}
	return filtered
}

// ConfigFile returns the JSON config path given with -c/-config, or "" when
// none is present. When repeated, the last one wins.
func ConfigFile(args []string) string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(args, ConfigFileFlags))

	return path
}
