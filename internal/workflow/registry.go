package workflow

import (
	"context"
	"fmt"

	"hark/internal/router"
)

// Handler runs one workflow for the command text that followed the routing
// keyword. A true stop return asks the listen loop to terminate.
type Handler func(ctx context.Context, env *Env, command string) (stop bool, err error)

// Registry resolves router IDs to handlers. It satisfies listen.Dispatcher.
type Registry struct {
	env      *Env
	handlers map[router.ID]Handler
}

// NewRegistry builds a registry with the full built-in handler set.
func NewRegistry(env *Env) *Registry {
	return &Registry{
		env: env,
		handlers: map[router.ID]Handler{
			router.Configure:   Configure,
			router.ExampleCode: ExampleCode,
			router.Bash:        Bash,
			router.Shell:       Shell,
			router.Question:    Question,
			router.Chat:        Chat,
			router.Exit:        Exit,
		},
	}
}

// Dispatch runs the handler registered for id. Exactly one handler runs per
// call; an unregistered id is an error.
func (r *Registry) Dispatch(ctx context.Context, id router.ID, command string) (bool, error) {
	h, ok := r.handlers[id]
	if !ok {
		return false, fmt.Errorf("workflow: no handler for %q", id)
	}
	return h(ctx, r.env, command)
}
