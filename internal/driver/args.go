package driver

import (
	"fmt"
	"strconv"
	"strings"

	"scriptcc/internal/config"
	"scriptcc/internal/errors"
)

// Version is the fixed text printed by --version.
const Version = "scriptcc 1.4.2"

const usageText = `Usage: scriptcc [options] file...

Options:
  -o <target>          output path (.o/.bc, .js or .html)
  -O0 .. -O3           optimization level (default -O0)
  -s KEY=VALUE         settings override, repeatable, order-significant
  -c                   compile to objects only, do not link
  -shared              build a shared/linkable library
  --bitcode-opts N     backend optimization level (0 or 1)
  --minify N           enable (1) or disable (0) minification
  --compress N         enable (1) or disable (0) whitespace compression
  --transform <cmd>    run <cmd> on the translated text
  --shell-file <path>  HTML shell template for document targets
  --typed-arrays N     typed-array mode (0, 1 or 2)
  --dep-file <path>    write a dependency file (currently empty)
  --version            print version and exit
  --help               print this text and exit
`

// ParseArgs parses a cc-style argument vector into a BuildRequest.
// A non-empty info return means an informational invocation (--help,
// --version): print it and exit 0 without building anything.
func ParseArgs(argv []string) (*BuildRequest, string, error) {
	// Informational flags win outright, before anything else is consumed.
	for _, arg := range argv {
		switch arg {
		case "--help":
			return nil, usageText, nil
		case "--version":
			return nil, Version + "\n", nil
		}
	}

	req := &BuildRequest{BitcodeOpts: -1}
	var rawOverrides []string
	var typedArrays *int

	next := func(i *int, flag string) (string, error) {
		*i++
		if *i >= len(argv) {
			return "", errors.Usage("%s requires an argument", flag)
		}
		return argv[*i], nil
	}

	toggle := func(i *int, flag string) (bool, error) {
		val, err := next(i, flag)
		if err != nil {
			return false, err
		}
		switch val {
		case "0":
			return false, nil
		case "1":
			return true, nil
		default:
			return false, errors.Config(errors.ErrorBadFlagValue, "%s expects 0 or 1, got %q", flag, val)
		}
	}

	var target string
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "-o":
			val, err := next(&i, "-o")
			if err != nil {
				return nil, "", err
			}
			target = val
		case arg == "-s":
			val, err := next(&i, "-s")
			if err != nil {
				return nil, "", err
			}
			rawOverrides = append(rawOverrides, val)
		case arg == "-c":
			req.CompileOnly = true
		case arg == "-shared":
			req.Shared = true
		case strings.HasPrefix(arg, "-O") && len(arg) == 3:
			level, err := strconv.Atoi(arg[2:])
			if err != nil || level < 0 || level > 3 {
				return nil, "", errors.Config(errors.ErrorBadOptLevel, "invalid optimization flag %q", arg)
			}
			req.OptLevel = level
		case arg == "--bitcode-opts":
			val, err := next(&i, arg)
			if err != nil {
				return nil, "", err
			}
			n, convErr := strconv.Atoi(val)
			if convErr != nil || (n != 0 && n != 1) {
				return nil, "", errors.Config(errors.ErrorBadFlagValue, "--bitcode-opts expects 0 or 1, got %q", val)
			}
			req.BitcodeOpts = n
		case arg == "--minify":
			on, err := toggle(&i, arg)
			if err != nil {
				return nil, "", err
			}
			req.Minify = &on
		case arg == "--compress":
			on, err := toggle(&i, arg)
			if err != nil {
				return nil, "", err
			}
			req.Compress = on
		case arg == "--transform":
			val, err := next(&i, arg)
			if err != nil {
				return nil, "", err
			}
			req.TransformCmd = val
		case arg == "--shell-file":
			val, err := next(&i, arg)
			if err != nil {
				return nil, "", err
			}
			req.ShellFile = val
		case arg == "--typed-arrays":
			val, err := next(&i, arg)
			if err != nil {
				return nil, "", err
			}
			n, convErr := strconv.Atoi(val)
			if convErr != nil || n < 0 || n > 2 {
				return nil, "", errors.Config(errors.ErrorBadFlagValue, "--typed-arrays expects 0, 1 or 2, got %q", val)
			}
			typedArrays = &n
		case arg == "--dep-file":
			val, err := next(&i, arg)
			if err != nil {
				return nil, "", err
			}
			req.DepFile = val
		case strings.HasPrefix(arg, "-"):
			return nil, "", errors.Config(errors.ErrorUnknownFlag, "unknown flag %q", arg)
		default:
			kind, err := classifyInput(arg)
			if err != nil {
				return nil, "", err
			}
			req.Inputs = append(req.Inputs, &InputArtifact{Path: arg, Kind: kind})
		}
	}

	if len(req.Inputs) == 0 {
		return nil, "", errors.Usage("no input files")
	}

	overrides, err := config.ParseOverrides(rawOverrides)
	if err != nil {
		return nil, "", err
	}
	// The typed-array mode selector is sugar for a settings key; it lands
	// after the -s pairs so an explicit flag wins.
	if typedArrays != nil {
		n := int64(*typedArrays)
		overrides = append(overrides, config.Override{Key: config.KeyTypedArrays, Int: &n})
	}
	req.Overrides = overrides

	if req.CompileOnly {
		if target != "" && len(req.Inputs) > 1 {
			return nil, "", errors.Usage("cannot combine -c and -o with multiple inputs")
		}
		if target != "" {
			req.Target = Target{Path: target, Kind: TargetObject}
		}
		return req, "", nil
	}

	if target == "" {
		target = DefaultTarget
	}
	req.Target, err = classifyTarget(target)
	if err != nil {
		return nil, "", err
	}
	return req, "", nil
}

// effectiveMinify resolves the tri-state minify toggle against the level
// default.
func (r *BuildRequest) effectiveMinify() bool {
	if r.Minify != nil {
		return *r.Minify
	}
	return config.MinifyDefault(r.OptLevel)
}

func (r *BuildRequest) String() string {
	return fmt.Sprintf("%d input(s) -O%d -> %s", len(r.Inputs), r.OptLevel, r.Target.Path)
}
