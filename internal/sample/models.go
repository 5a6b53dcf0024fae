// Package sample holds the todos and user models of the demo application and
// a set of headless views rendering them to text.
package sample

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/on-the-ground/effect_ive_store/store"
	"golang.org/x/text/unicode/norm"
)

const (
	TodosNamespace = "todos"
	UserNamespace  = "user"
)

type Todo struct {
	Name string `yaml:"name"`
	Done bool   `yaml:"done,omitempty"`
}

type TodosState struct {
	DataSource []Todo
}

type User struct {
	Name string `yaml:"name"`
	Age  int    `yaml:"age,omitempty"`
}

type UserState struct {
	DataSource User
	Todos      int
	Auth       bool
}

// Backend stands in for the remote side of the demo: what refresh fetches,
// who login signs in, and how long both take.
type Backend struct {
	Todos []Todo
	User  User
	Delay time.Duration
}

func (b Backend) wait(ctx context.Context) error {
	if b.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(b.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NewTodo builds a todo with its name in NFC form, so visually equal names
// compare equal.
func NewTodo(name string) Todo {
	return Todo{Name: norm.NFC.String(name)}
}

func TodosModel(b Backend) store.Model[TodosState] {
	return store.Model[TodosState]{
		State: TodosState{DataSource: []Todo{}},
		Reducers: map[string]store.Reducer[TodosState]{
			// add takes a Todo or a plain name.
			"add": func(prev TodosState, args ...any) TodosState {
				var t Todo
				switch v := args[0].(type) {
				case Todo:
					t = NewTodo(v.Name)
					t.Done = v.Done
				case string:
					t = NewTodo(v)
				default:
					panic(fmt.Errorf("%w: add got %T", store.ErrStateType, v))
				}
				return TodosState{DataSource: append(slices.Clone(prev.DataSource), t)}
			},
			"toggle": func(prev TodosState, args ...any) TodosState {
				i := args[0].(int)
				next := slices.Clone(prev.DataSource)
				next[i].Done = !next[i].Done
				return TodosState{DataSource: next}
			},
			"remove": func(prev TodosState, args ...any) TodosState {
				i := args[0].(int)
				return TodosState{DataSource: slices.Delete(slices.Clone(prev.DataSource), i, i+1)}
			},
			"setState": store.SetState[TodosState](),
		},
		Effects: map[string]store.Effect[TodosState]{
			"refresh": func(ctx context.Context, _ TodosState, all *store.Registry, _ ...any) error {
				if err := b.wait(ctx); err != nil {
					return err
				}
				data := make([]Todo, 0, len(b.Todos))
				for _, t := range b.Todos {
					n := NewTodo(t.Name)
					n.Done = t.Done
					data = append(data, n)
				}
				all.MustActions(TodosNamespace).Must("setState")(TodosState{DataSource: data})
				return all.Dispatch(UserNamespace, "setTodos", len(data))
			},
		},
	}
}

func UserModel(b Backend) store.Model[UserState] {
	return store.Model[UserState]{
		State: UserState{},
		Reducers: map[string]store.Reducer[UserState]{
			"setTodos": func(prev UserState, args ...any) UserState {
				prev.Todos = args[0].(int)
				return prev
			},
			"setState": store.SetState[UserState](),
		},
		Effects: map[string]store.Effect[UserState]{
			"login": func(ctx context.Context, _ UserState, all *store.Registry, _ ...any) error {
				if err := b.wait(ctx); err != nil {
					return err
				}
				return all.Dispatch(UserNamespace, "setState", func(prev UserState) UserState {
					prev.DataSource = b.User
					prev.Auth = true
					return prev
				})
			},
		},
	}
}

// NewStore returns the store of the demo application.
func NewStore(b Backend, opts ...store.Option) (*store.Store, error) {
	return store.CreateStore(map[string]store.Definition{
		TodosNamespace: TodosModel(b),
		UserNamespace:  UserModel(b),
	}, opts...)
}
