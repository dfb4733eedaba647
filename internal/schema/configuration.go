package schema

// Configuration is the result of a successful parse: every declared option
// holds a concrete value, default or user-supplied. It is consumed by one
// command invocation and discarded; nothing mutates it afterwards except
// controlled Set overrides.
type Configuration struct {
	values   map[string]any
	supplied map[string]bool
	args     []string
}

// Args returns a copy of the positional arguments left after flag parsing.
func (c *Configuration) Args() []string {
	return append([]string(nil), c.args...)
}

// Arg returns the i-th positional argument, or "" when absent.
func (c *Configuration) Arg(i int) string {
	if i < 0 || i >= len(c.args) {
		return ""
	}
	return c.args[i]
}

// Supplied reports whether the user gave the option explicitly rather than
// inheriting its default.
func (c *Configuration) Supplied(name string) bool {
	return c.supplied[name]
}

// Set overrides a value after parsing. It exists for derived values computed
// by PostParse hooks and for programmatic callers.
func (c *Configuration) Set(name string, value any) {
	c.values[name] = value
}

// String returns the string value of an option, "" when unset or not a
// string.
func (c *Configuration) String(name string) string {
	v, _ := c.values[name].(string)
	return v
}

// Int returns the integer value of an option.
func (c *Configuration) Int(name string) int {
	v, _ := c.values[name].(int)
	return v
}

// Bool returns the boolean value of an option.
func (c *Configuration) Bool(name string) bool {
	v, _ := c.values[name].(bool)
	return v
}

// StringMap returns the decoded value of a JSONMap option.
func (c *Configuration) StringMap(name string) map[string]string {
	v, _ := c.values[name].(map[string]string)
	return v
}

// StringList returns the decoded value of a JSONList option.
func (c *Configuration) StringList(name string) []string {
	v, _ := c.values[name].([]string)
	return v
}
