package arger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/pflag"
	xterm "golang.org/x/term"

	"github.com/nulifyer/hoteldash/logger"
)

var (
	registeredFlags = make(map[string]IFlag)
	aliasToFlag     = make(map[string]IFlag)
	order           []string
	usageOut        io.Writer = os.Stdout
)

// -------------------------------
// IFlag - interface for all flag types
// --------------------------------

type IFlag interface {
	GetName() string
	GetDescription() string
	GetRequired() bool
	GetAliases() []string
	GetFlagType() string
	GetDefault() any
	GetExpectedValues() []any
	bind(fs *pflag.FlagSet) binding
}

type IParsedFlag interface {
	GetValue() any
	GetFlag() IFlag
}

// binding is a flag attached to a pflag set for one Parse call.
type binding interface {
	parsed() (IParsedFlag, bool)
	defaultParsed() IParsedFlag
}

// -------------------------------
// Flag - generic flag type
// --------------------------------

type Flag[T any] struct {
	Name           string
	Description    string
	Required       bool
	Default        *T
	DefaultFunc    func() T
	Aliases        []string
	ExpectedValues []T
	Parser         func(string) (T, error)
}

func (f Flag[T]) GetName() string        { return f.Name }
func (f Flag[T]) GetDescription() string { return f.Description }
func (f Flag[T]) GetRequired() bool      { return f.Required }
func (f Flag[T]) GetAliases() []string   { return f.Aliases }
func (f Flag[T]) GetFlagType() string    { return fmt.Sprintf("%T", *new(T)) }
func (f Flag[T]) GetDefault() any {
	if f.Default != nil {
		return *f.Default
	}
	if f.DefaultFunc != nil {
		return f.DefaultFunc()
	}
	return nil
}
func (f Flag[T]) GetExpectedValues() []any {
	out := make([]any, len(f.ExpectedValues))
	for i, v := range f.ExpectedValues {
		out[i] = v
	}
	return out
}

func (f Flag[T]) parseValue(s string) (T, error) {
	var v T
	if f.Parser != nil {
		parsed, err := f.Parser(s)
		if err != nil {
			return v, err
		}
		v = parsed
	} else if _, err := fmt.Sscan(s, &v); err != nil {
		return v, fmt.Errorf("could not parse value %q as %s", s, f.GetFlagType())
	}

	if len(f.ExpectedValues) > 0 {
		for _, ev := range f.ExpectedValues {
			if strings.EqualFold(fmt.Sprint(ev), fmt.Sprint(v)) {
				return v, nil
			}
		}
		return v, fmt.Errorf("invalid value %q", s)
	}
	return v, nil
}

func (f Flag[T]) bind(fs *pflag.FlagSet) binding {
	b := &value[T]{flag: f}
	pf := fs.VarPF(b, f.Name, shorthand(f.Aliases), f.Description)
	if _, isBool := any(*new(T)).(bool); isBool {
		pf.NoOptDefVal = "true"
	}
	return b
}

// value adapts a Flag[T] to pflag.Value.
type value[T any] struct {
	flag Flag[T]
	v    T
	set  bool
}

func (b *value[T]) String() string {
	if !b.set {
		return ""
	}
	return fmt.Sprint(b.v)
}

func (b *value[T]) Set(s string) error {
	v, err := b.flag.parseValue(s)
	if err != nil {
		return err
	}
	b.v, b.set = v, true
	return nil
}

func (b *value[T]) Type() string { return b.flag.GetFlagType() }

func (b *value[T]) parsed() (IParsedFlag, bool) {
	if !b.set {
		return nil, false
	}
	f := b.flag
	return ParsedFlag[T]{flag: &f, Value: b.v}, true
}

func (b *value[T]) defaultParsed() IParsedFlag {
	f := b.flag
	if f.Default != nil {
		return ParsedFlag[T]{flag: &f, Value: *f.Default}
	}
	if f.DefaultFunc != nil {
		return ParsedFlag[T]{flag: &f, Value: f.DefaultFunc()}
	}
	return nil
}

// -------------------------------
// ParsedFlag - generic parsed flag type
// --------------------------------

type ParsedFlag[T any] struct {
	flag  *Flag[T]
	Value T
}

func (pf ParsedFlag[T]) GetValue() any  { return pf.Value }
func (pf ParsedFlag[T]) GetFlag() IFlag { return pf.flag }
func (pf ParsedFlag[T]) As() T          { return pf.Value }

// -------------------------------
// Built-in flag constructors
// --------------------------------

func StringFlag(name string) Flag[string] {
	return Flag[string]{
		Name:   name,
		Parser: func(s string) (string, error) { return s, nil },
	}
}

func IntFlag(name string) Flag[int] {
	return Flag[int]{
		Name: name,
		Parser: func(s string) (int, error) {
			var v int
			_, err := fmt.Sscanf(s, "%d", &v)
			return v, err
		},
	}
}

func BoolFlag(name string) Flag[bool] {
	return Flag[bool]{
		Name: name,
		Parser: func(s string) (bool, error) {
			switch strings.ToLower(s) {
			case "true", "1", "yes":
				return true, nil
			case "false", "0", "no":
				return false, nil
			default:
				return false, fmt.Errorf("invalid bool value: %s", s)
			}
		},
	}
}

func DurationFlag(name string) Flag[time.Duration] {
	return Flag[time.Duration]{
		Name:   name,
		Parser: time.ParseDuration,
	}
}

// -------------------------------
// Register & Parse
// --------------------------------

// RegisterFlag adds f to the set read by the next Parse. Misconfigured flags
// are programming errors and panic.
func RegisterFlag(f IFlag) {
	if err := validateFlag(f); err != nil {
		panic(err)
	}
	for _, alias := range f.GetAliases() {
		switch {
		case alias == "--help" || alias == "-h":
			panic(fmt.Errorf("flag --%s: alias %s is reserved for help", f.GetName(), alias))
		case !strings.HasPrefix(alias, "-"):
			panic(fmt.Errorf("flag --%s: alias %s must start with - or --", f.GetName(), alias))
		}
		if _, exists := aliasToFlag[alias]; exists {
			panic(fmt.Errorf("flag --%s: alias %s is already registered", f.GetName(), alias))
		}
	}

	registeredFlags[f.GetName()] = f
	order = append(order, f.GetName())
	for _, alias := range f.GetAliases() {
		aliasToFlag[alias] = f
	}
}

func validateFlag(f IFlag) error {
	switch {
	case f.GetName() == "":
		return errors.New("flag name cannot be empty")
	case registeredFlags[f.GetName()] != nil:
		return fmt.Errorf("flag --%s is already registered", f.GetName())
	case f.GetRequired() && f.GetDefault() != nil:
		return fmt.Errorf("flag --%s cannot be required and have a default value", f.GetName())
	}
	return nil
}

// Reset forgets every registered flag.
func Reset() {
	registeredFlags = make(map[string]IFlag)
	aliasToFlag = make(map[string]IFlag)
	order = nil
}

// shorthand picks the single-letter alias pflag can bundle, if any.
func shorthand(aliases []string) string {
	for _, a := range aliases {
		if len(a) == 2 && a[0] == '-' && a[1] != '-' {
			return a[1:]
		}
	}
	return ""
}

// canonical rewrites registered multi-letter aliases such as -nc to the
// long form pflag understands.
func canonical(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}
		name, val, hasVal := strings.Cut(arg, "=")
		if f, ok := aliasToFlag[name]; ok && name != "--"+f.GetName() && shorthand([]string{name}) == "" {
			arg = "--" + f.GetName()
			if hasVal {
				arg += "=" + val
			}
		}
		out = append(out, arg)
	}
	return out
}

// ParseArgs parses args against the registered flags and returns the parsed
// values (defaults filled in) and the remaining positional arguments.
func ParseArgs(args []string) (map[string]IParsedFlag, []string, error) {
	fs := pflag.NewFlagSet("hoteldash", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	bindings := make(map[string]binding, len(registeredFlags))
	for _, name := range order {
		bindings[name] = registeredFlags[name].bind(fs)
	}

	if err := fs.Parse(canonical(args)); err != nil {
		return nil, nil, err
	}

	parsed := make(map[string]IParsedFlag, len(bindings))
	for name, b := range bindings {
		if pf, ok := b.parsed(); ok {
			parsed[name] = pf
			continue
		}
		if def := b.defaultParsed(); def != nil {
			parsed[name] = def
			continue
		}
		if registeredFlags[name].GetRequired() {
			return nil, nil, fmt.Errorf("required flag --%s not set", name)
		}
	}
	logger.Trace("arger: parsed %d flag(s), %d positional", len(parsed), fs.NArg())
	return parsed, fs.Args(), nil
}

// Parse reads os.Args. Help prints usage and exits 0; any other error prints
// usage and exits 1.
func Parse() (map[string]IParsedFlag, []string) {
	parsed, rest, err := ParseArgs(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		PrintUsage()
		os.Exit(0)
	}
	if err != nil {
		logger.Error("%v", err)
		PrintUsage()
		os.Exit(1)
	}
	return parsed, rest
}

// -------------------------------
// Usage / Help
// --------------------------------

func PrintUsage() {
	fmt.Fprintln(usageOut, "Usage:")

	termWidth, _, err := xterm.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		termWidth = 80
	}

	indent := 4
	leftColWidth := 10
	for _, name := range order {
		leftColWidth = max(leftColWidth, len(name))
	}
	leftColWidth += 2
	descWidth := max(termWidth-indent-leftColWidth-1, 20)

	names := append([]string(nil), order...)
	sort.Strings(names)
	pad := strings.Repeat(" ", indent+leftColWidth)
	for _, name := range names {
		f := registeredFlags[name]
		aliases := strings.Join(append([]string{"--" + name}, f.GetAliases()...), ", ")
		fmt.Fprintf(usageOut, "%s%-*s %s\n", strings.Repeat(" ", indent), leftColWidth, name, aliases)
		for _, ln := range wrapText(f.GetDescription(), descWidth) {
			fmt.Fprintf(usageOut, "%s%s\n", pad, ln)
		}
		if ev := f.GetExpectedValues(); len(ev) > 0 {
			values := make([]string, len(ev))
			for i, v := range ev {
				values[i] = fmt.Sprint(v)
				if values[i] == "" {
					values[i] = "<empty>"
				}
			}
			fmt.Fprintf(usageOut, "%s[%s]\n", pad, strings.Join(values, ", "))
		}
		fmt.Fprintln(usageOut)
	}
}

func wrapText(s string, maxWidth int) []string {
	if s == "" || maxWidth <= 0 {
		return nil
	}
	var out []string
	var line strings.Builder
	for _, w := range strings.Fields(s) {
		if line.Len() > 0 && line.Len()+1+len(w) > maxWidth {
			out = append(out, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(w)
	}
	if line.Len() > 0 {
		out = append(out, line.String())
	}
	return out
}

// -------------------------------
// Helper functions
// --------------------------------

func Optional[T any](v T) *T { return &v }

// Get returns the typed value of a parsed flag. Asking for an unregistered
// flag or the wrong type is a programming error.
func Get[T any](flags map[string]IParsedFlag, name string) T {
	pf, exists := flags[name]
	if !exists {
		logger.Fatal("Flag %s was not registered", name)
	}
	typed, ok := pf.(ParsedFlag[T])
	if !ok {
		logger.Fatal("Flag %s is not of expected type", name)
	}
	return typed.Value
}

// Lookup is Get without the fatal exit: ok is false when the flag was
// neither given nor defaulted.
func Lookup[T any](flags map[string]IParsedFlag, name string) (T, bool) {
	typed, ok := flags[name].(ParsedFlag[T])
	return typed.Value, ok
}
