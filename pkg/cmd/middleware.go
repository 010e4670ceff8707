package cmd

// Middleware wraps a command (e.g. logging, argument checks, rate limits).
type Middleware func(Command) Command

// Apply applies middlewares in order; the last in the list is the outermost.
func Apply(c Command, mws ...Middleware) Command {
	for _, mw := range mws {
		c = mw(c)
	}
	return c
}

// Mount applies mws to c and registers the result with c's registry, so the
// registry holds the outermost wrapper. It is the usual last step of a command
// constructor. An inactive registry is logged by the descriptor; the command
// stays pending until it is registered again.
func Mount(c Command, mws ...Middleware) Command {
	w := Apply(c, mws...)
	_ = c.Describe().Register(w)
	return w
}
