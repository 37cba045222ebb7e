// Package flagx contains helpers for parsing a subset of command-line
// flags without disturbing flags owned by other components.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs picks out of args the flags named in keep, together with any
// value attached to them, dropping everything else. Both the split form
// ("-c conf.json") and the '=' form ("-config=conf.json") are handled; a
// token following a kept flag counts as its value unless it looks like
// another flag.
func FilterArgs(args []string, keep []string) []string {
	names := make(map[string]bool, len(keep))
	for _, n := range keep {
		names[n] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, hasValue := strings.Cut(arg, "="); hasValue && strings.HasPrefix(arg, "-") {
			if names[name] {
				out = append(out, arg)
			}
			continue
		}

		if !names[arg] {
			continue
		}
		out = append(out, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
			out = append(out, args[i])
		}
	}
	return out
}

// JSONConfigPath reads the -c/-config flag naming the JSON config file,
// ignoring every other argument so flags owned by other packages are left
// alone. Returns "" when the flag is absent.
func JSONConfigPath() string {
	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	path := fs.String("config", "", "path to the JSON config file")
	fs.StringVar(path, "c", "", "path to the JSON config file (short)")
	_ = fs.Parse(args)

	return *path
}
