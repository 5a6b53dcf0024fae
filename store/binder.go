package store

// bindActions builds the action map of c. Names are iterated once, here;
// the resulting closures hold c and never change afterwards.
func bindActions[S any](c *container[S]) *Actions {
	acts := &Actions{
		namespace: c.ns,
		byName:    make(map[string]Action, len(c.model.Reducers)+len(c.model.Effects)),
		reducers:  c.model.reducerNames(),
		effects:   c.model.effectNames(),
	}
	for _, name := range acts.reducers {
		acts.byName[name] = bindReducer(c, c.model.Reducers[name])
	}
	for _, name := range acts.effects {
		acts.byName[name] = bindEffect(c, name)
	}
	return acts
}

// bindReducer applies fn to the latest state, synchronously, in the caller's goroutine.
func bindReducer[S any](c *container[S], fn Reducer[S]) Action {
	return func(args ...any) {
		c.reduce(fn, args)
	}
}

// bindEffect only records the request; the runner starts the body later.
func bindEffect[S any](c *container[S], name string) Action {
	return func(args ...any) {
		c.request(name, args)
	}
}
