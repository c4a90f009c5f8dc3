// Package demo holds the component catalog rendered by the weave CLI and
// resolved by dev server module files ("component:Greeting").
package demo

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/vango-dev/weave/pkg/backend/attrs"
	"github.com/vango-dev/weave/pkg/flow"
	"github.com/vango-dev/weave/pkg/reactive"
	"github.com/vango-dev/weave/pkg/render"
)

// Catalog maps component names to implementations.
type Catalog map[string]render.Component

// Components returns the built-in catalog.
func Components() Catalog {
	return Catalog{
		"App":           App,
		"Badge":         Badge,
		"Card":          Card,
		"Counter":       Counter,
		"Greeting":      Greeting,
		"GreetingLoud":  GreetingLoud,
		"GreetingPlain": GreetingPlain,
	}
}

// Lookup returns the component registered under name.
func (c Catalog) Lookup(name string) (render.Component, bool) {
	fn, ok := c[name]
	return fn, ok
}

// Names returns the catalog's names in sorted order.
func (c Catalog) Names() []string {
	return slices.Sorted(maps.Keys(c))
}

func name(props render.Props) string {
	if n := attrs.Text(props["name"]); n != "" {
		return n
	}
	return "world"
}

// Greeting renders <h1 class="greeting">Hello, name!</h1>.
func Greeting(props render.Props) any {
	return render.H("h1", render.Props{"class": "greeting"}, "Hello, ", name(props), "!")
}

// GreetingLoud is Greeting shouting.
func GreetingLoud(props render.Props) any {
	return render.H("h1", render.Props{"class": []string{"greeting", "loud"}},
		"HELLO, ", strings.ToUpper(name(props)), "!")
}

// GreetingPlain renders the greeting as a paragraph.
func GreetingPlain(props render.Props) any {
	return render.H("p", nil, "hi ", name(props))
}

// Badge renders its children in a pill; props["tone"] adds a modifier class.
func Badge(props render.Props) any {
	class := []string{"badge"}
	if tone := attrs.Text(props["tone"]); tone != "" {
		class = append(class, "badge-"+tone)
	}
	return render.H("span", render.Props{"class": class}, props.Children())
}

// Card renders a titled section around its children.
func Card(props render.Props) any {
	return render.H("section", render.Props{"class": "card"},
		render.H("h2", nil, attrs.Text(props["title"])),
		props.Children(),
	)
}

// Counter shows props["count"] (a *reactive.Signal[int]) or a counter
// starting at props["start"], flagging values of ten or more.
func Counter(props render.Props) any {
	count, ok := props["count"].(*reactive.Signal[int])
	if !ok {
		count = reactive.NewSignal(toInt(props["start"]))
	}
	return render.H("div", render.Props{"class": "counter"},
		render.H("span", render.Props{"class": "value"}, count),
		flow.Show(reactive.Gte[int](count, 10),
			render.H("em", nil, " big"),
			render.H("em", nil, " small"),
		),
	)
}

// App composes the catalog into one page.
func App(props render.Props) any {
	return render.H(render.Fragment, nil,
		render.H(Greeting, render.Props{"name": props["name"]}),
		render.H(Card, render.Props{"title": "Status"},
			render.H(Counter, render.Props{"count": props["count"], "start": props["start"]}),
			render.H(Badge, render.Props{"tone": "ok"}, "live"),
		),
	)
}

func toInt(v any) int {
	switch n := attrs.Unwrap(v).(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	default:
		return 0
	}
}
