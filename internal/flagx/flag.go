// Package flagx lets several components parse their own subset of os.Args
// without tripping over each other's flags.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps only the allowed flags (and their values) from args.
// Both "-f value" and "-f=value" forms are recognised; positional arguments
// are dropped.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}
	return filtered
}

// Positional returns args with every allowed flag and its value removed, so
// commands can read their verbs after the config flags.
func Positional(args []string, valueFlags []string) []string {
	known := make(map[string]struct{}, len(valueFlags))
	for _, f := range valueFlags {
		known[f] = struct{}{}
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") {
			name, _, hasValue := strings.Cut(arg, "=")
			if _, ok := known[name]; ok && !hasValue && i+1 < len(args) {
				i++
			}
			continue
		}
		out = append(out, arg)
	}
	return out
}

// lookup parses a single string flag that may be given under several names.
func lookup(names ...string) string {
	var value string

	args := FilterArgs(os.Args[1:], names)
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	for _, n := range names {
		fs.StringVar(&value, strings.TrimLeft(n, "-"), "", "")
	}
	_ = fs.Parse(args)

	return value
}

// JsonConfigFlags returns the path given with -c or -config, or "".
func JsonConfigFlags() string {
	return lookup("-c", "-config")
}

// EnvFileFlags returns the path given with -env, or "".
func EnvFileFlags() string {
	return lookup("-env")
}
