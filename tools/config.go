package tools

import "context"

// Hooks are optional observers fired around orchestrated tool runs
type Hooks struct {
	startHook func(context.Context, ITool, any)
	endHook   func(context.Context, ITool, any, any)
	errorHook func(context.Context, ITool, any, error)
}

// Config is the shared configuration embedded by every tool
type Config struct {
	// title the default title of the tool
	title string
	// description the default description of the tool
	description string
	hooks       Hooks
}

func (c *Config) SetTitle(v string) {
	c.title = v
}

func (c Config) Title() string {
	return c.title
}

func (c *Config) SetDescription(v string) {
	c.description = v
}

func (c Config) Description() string {
	return c.description
}

func (c *Config) SetStartHook(fn func(context.Context, ITool, any)) {
	c.hooks.startHook = fn
}

func (c *Config) SetEndHook(fn func(context.Context, ITool, any, any)) {
	c.hooks.endHook = fn
}

func (c *Config) SetErrorHook(fn func(context.Context, ITool, any, error)) {
	c.hooks.errorHook = fn
}

func (c Config) Hooks() Hooks {
	return c.hooks
}
