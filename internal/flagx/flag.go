// Package flagx parses a subset of the command line.
//
// Configuration is read in layers, so one invocation may carry flags meant
// for different layers (-c for the JSON file, -a/-t/... for overrides). A Set
// only sees the flags registered on it; everything else is dropped before
// the standard flag parser runs.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// Set is a flag.FlagSet whose allow-list is the set of flags defined on it.
type Set struct {
	*flag.FlagSet
}

// NewSet returns an empty Set that reports parse errors instead of exiting.
func NewSet(name string) *Set {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return &Set{FlagSet: fs}
}

// Allowed lists the accepted spellings of every defined flag, single and
// double dash, in definition-name order.
func (s *Set) Allowed() []string {
	var names []string
	s.VisitAll(func(f *flag.Flag) {
		names = append(names, "-"+f.Name, "--"+f.Name)
	})
	return names
}

// Parse parses only the arguments that belong to flags defined on s.
func (s *Set) Parse(args []string) error {
	return s.FlagSet.Parse(FilterArgs(args, s.Allowed()))
}

// FilterArgs keeps the allowed flags from args together with their values.
//
// A value is taken either from "-flag=value" or from the following argument
// when that argument does not start with a dash. The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
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

// ConfigPath returns the JSON config file named by -c or -config in args,
// or "" when neither is given. The last occurrence wins.
func ConfigPath(args []string) string {
	var path string

	s := NewSet("json")
	s.StringVar(&path, "config", "", "path to config file")
	s.StringVar(&path, "c", "", "path to config file (short)")
	_ = s.Parse(args)

	return path
}
