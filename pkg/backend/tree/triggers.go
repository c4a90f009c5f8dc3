package tree

import (
	"context"
	"fmt"
	"slices"
	"strings"

	werrors "github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/pkg/extension"
)

// Platform is the trigger platform of tree hosts.
const Platform = "tree"

// events are the trigger names Directives contributes.
var events = []string{"click", "input", "submit"}

func triggers() map[string]extension.Trigger {
	out := make(map[string]extension.Trigger, len(events))
	for _, name := range events {
		out[name] = extension.Trigger{
			Handler:     callHandler,
			Description: "calls the node's " + HandlerProp(name) + " prop",
			Platforms:   []string{Platform},
		}
	}
	return out
}

// HandlerProp returns the prop holding the handler of event, e.g.
// "click" -> "onClick".
func HandlerProp(event string) string {
	if event == "" {
		return "on"
	}
	return "on" + strings.ToUpper(event[:1]) + event[1:]
}

// callHandler invokes the target node's handler prop. A node without a
// handler ignores the event.
func callHandler(ctx context.Context, ev extension.TriggerEvent) error {
	n, ok := ev.Target.(*Node)
	if !ok {
		return fmt.Errorf("tree: %s target is %T, not *tree.Node", ev.Name, ev.Target)
	}
	switch h := n.Props[HandlerProp(ev.Name)].(type) {
	case nil:
	case func():
		h()
	case func(any):
		h(ev.Payload)
	case func(context.Context, any) error:
		return h(ctx, ev.Payload)
	default:
		return fmt.Errorf("tree: unsupported %s handler %T", HandlerProp(ev.Name), h)
	}
	return nil
}

// Fire delivers event name to n through the trigger composed into c.
func Fire(ctx context.Context, c *extension.Composed, name string, n *Node, payload any) error {
	t, ok := c.Trigger(name)
	if !ok || !slices.Contains(c.TriggersFor(Platform), name) {
		return werrors.New(werrors.CodeUnknownTrigger).WithSubject(name)
	}
	return t.Handler(ctx, extension.TriggerEvent{Name: name, Target: n, Payload: payload})
}
