package service

// M is an arbitrary map used as template rendering context.
type M map[string]any
