package sample

import (
	"context"
	"fmt"
	"strings"

	"github.com/on-the-ground/effect_ive_store/store"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Views renders the demo application as plain text.
type Views struct {
	store    *store.Store
	todoList store.Component[string]
}

func NewViews(s *store.Store) *Views {
	todoList := store.Connect[string](s, TodosNamespace,
		func(snap store.Snapshot[any]) store.Props {
			return store.Props{
				"dataSource":  snap.State.(TodosState).DataSource,
				"customField": "connected",
			}
		},
		func(acts *store.Actions) store.Props {
			props := store.Props{}
			for _, name := range acts.Names() {
				props[name] = acts.Must(name)
			}
			return props
		},
	)(renderTodoList)

	return &Views{
		store:    s,
		todoList: todoList,
	}
}

func renderTodoList(_ context.Context, props store.Props) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %v (%v)\n", props["title"], props["customField"])
	for i, t := range props["dataSource"].([]Todo) {
		mark := " "
		if t.Done {
			mark = "x"
		}
		fmt.Fprintf(&b, "%d. [%s] %s\n", i, mark, t.Name)
	}
	return b.String()
}

// TodoList is the connected list; title comes from the caller.
func (v *Views) TodoList(ctx context.Context, title string) string {
	return v.todoList(ctx, store.Props{"title": title})
}

func (v *Views) TodoApp(ctx context.Context) string {
	snap := v.store.MustUseModelState(ctx, TodosNamespace)
	var body string
	switch st, _ := snap.Effect("refresh"); {
	case st.IsLoading:
		body = "loading...\n"
	case st.Error != nil:
		body = fmt.Sprintf("refresh failed: %v\n", st.Error)
	case len(snap.State.(TodosState).DataSource) == 0:
		body = "no task\n"
	default:
		body = v.TodoList(ctx, "Todo list")
	}
	return "## Todos\n" + body
}

func (v *Views) UserApp(ctx context.Context) string {
	snap, err := store.StateOf[UserState](ctx, v.store, UserNamespace)
	if err != nil {
		panic(err)
	}
	if !snap.State.Auth {
		return "## User\nnot logged in\n"
	}
	u := snap.State.DataSource
	return fmt.Sprintf("## User\nname: %s\nage: %d\ntodos: %d\n", cases.Title(language.English).String(u.Name), u.Age, snap.State.Todos)
}

// App renders every view of the demo.
func (v *Views) App(ctx context.Context) string {
	return v.TodoApp(ctx) + v.UserApp(ctx)
}
