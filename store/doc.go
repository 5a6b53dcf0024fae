// Package store is a namespaced state container.
//
// A Model bundles an initial state, reducers and effects. CreateStore takes
// one model per namespace; WithProvider mounts them into a context, and the
// UseModel family reads them back:
//
//	s := store.MustCreateStore(map[string]store.Definition{
//		"todos": todosModel,
//	})
//	ctx, unmount := s.WithProvider(ctx, nil)
//	defer unmount()
//
//	snap, actions := s.MustUseModel(ctx, "todos")
//	actions.Must("add")(todo)
//
// Reducer actions apply synchronously. Effect actions only record a request;
// the effect runs later on its own goroutine with the latest arguments, and
// its progress is published through the namespace's EffectStatus records.
// At most one run of an effect is in flight per mount; requests made meanwhile
// coalesce into one more run.
//
// Every change produces a new Snapshot. Subscribe and Mount deliver them in
// version order.
package store
