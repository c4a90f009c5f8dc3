package extension

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync/atomic"

	werrors "github.com/vango-dev/weave/internal/errors"
)

var logger atomic.Pointer[slog.Logger]

// SetLogger sets the logger used for validation and resolver failures.
// Passing nil restores slog.Default().
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

func log() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// SetupHook is a collected setup hook together with the identity of the
// extension that contributed it.
type SetupHook struct {
	Extension Meta
	Scope     *Scope
	Fn        func(ctx context.Context, host Host) error
}

type namedResolver struct {
	key     string
	resolve DirectiveResolver
}

// Composed is the merged capability set of an ordered descriptor list.
// It is read-only after Compose returns.
type Composed struct {
	extensions       []Meta
	resolvers        []namedResolver
	namespaces       map[string]string
	tagNamespaceMap  map[string]string
	tagAliases       map[string]string
	triggers         map[string]Trigger
	triggerOwners    map[string]string
	setups           []SetupHook
	validationErrors []error
}

// Compose merges descriptors in order. Nil entries are skipped. Validate
// hooks run immediately; an error or panic from one is logged and recorded
// without affecting the rest of the composition.
func Compose(descs ...*Descriptor) *Composed {
	c := &Composed{
		namespaces:      make(map[string]string),
		tagNamespaceMap: make(map[string]string),
		tagAliases:      make(map[string]string),
		triggers:        make(map[string]Trigger),
		triggerOwners:   make(map[string]string),
	}

	for _, d := range descs {
		if d == nil {
			continue
		}
		c.extensions = append(c.extensions, d.Meta)

		if d.Lifecycle.Validate != nil {
			if err := runValidate(d); err != nil {
				log().Warn("extension validation failed", "extension", d.Meta.Key, "error", err)
				c.validationErrors = append(c.validationErrors, err)
			}
		}

		if rp := d.Capabilities.RendererProps; rp != nil {
			for _, r := range rp.OnDirective {
				if r != nil {
					c.resolvers = append(c.resolvers, namedResolver{key: d.Meta.Key, resolve: r})
				}
			}
			maps.Copy(c.namespaces, rp.Namespaces)
			maps.Copy(c.tagNamespaceMap, rp.TagNamespaceMap)
			maps.Copy(c.tagAliases, rp.TagAliases)
		}

		for name, t := range d.Capabilities.Triggers {
			c.triggers[name] = t
			c.triggerOwners[name] = d.Meta.Key
		}

		if d.Lifecycle.Setup != nil {
			c.setups = append(c.setups, SetupHook{
				Extension: d.Meta,
				Scope:     d.Scope,
				Fn:        d.Lifecycle.Setup,
			})
		}
	}

	return c
}

func runValidate(d *Descriptor) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = werrors.New(werrors.CodeValidateFailed).
				WithSubject(d.Meta.Key).
				WithDetail(fmt.Sprintf("panic: %v", r))
		}
	}()
	if verr := d.Lifecycle.Validate(); verr != nil {
		return werrors.New(werrors.CodeValidateFailed).
			WithSubject(d.Meta.Key).
			Wrap(verr)
	}
	return nil
}

// Extensions returns the metadata of the composed descriptors in order.
func (c *Composed) Extensions() []Meta {
	return slices.Clone(c.extensions)
}

// OnDirective asks each resolver in composition order and returns the
// first non-nil setter, or nil if none handles the directive.
func (c *Composed) OnDirective(prefix, key string, prop any) DirectiveSetter {
	for _, r := range c.resolvers {
		if s := c.resolve(r, prefix, key, prop); s != nil {
			return s
		}
	}
	return nil
}

func (c *Composed) resolve(r namedResolver, prefix, key string, prop any) (s DirectiveSetter) {
	defer func() {
		if p := recover(); p != nil {
			log().Error("directive resolver panicked",
				"extension", r.key, "directive", prefix+":"+key, "panic", p)
			s = nil
		}
	}()
	return r.resolve(prefix, key, prop)
}

// HasDirectives reports whether any resolver was contributed.
func (c *Composed) HasDirectives() bool {
	return len(c.resolvers) > 0
}

// Namespaces returns a copy of the merged namespace table.
func (c *Composed) Namespaces() map[string]string {
	return maps.Clone(c.namespaces)
}

// TagNamespaceMap returns a copy of the merged tag-to-namespace table.
func (c *Composed) TagNamespaceMap() map[string]string {
	return maps.Clone(c.tagNamespaceMap)
}

// TagAliases returns a copy of the merged alias table.
func (c *Composed) TagAliases() map[string]string {
	return maps.Clone(c.tagAliases)
}

// ResolveTag applies the alias table and returns the final tag along with
// its namespace URI, if any.
func (c *Composed) ResolveTag(tag string) (resolved, namespace string) {
	resolved = tag
	if alias, ok := c.tagAliases[tag]; ok {
		resolved = alias
	}
	if ns, ok := c.tagNamespaceMap[resolved]; ok {
		if uri, ok := c.namespaces[ns]; ok {
			return resolved, uri
		}
		return resolved, ns
	}
	return resolved, ""
}

// Trigger returns the named trigger.
func (c *Composed) Trigger(name string) (Trigger, bool) {
	t, ok := c.triggers[name]
	return t, ok
}

// TriggerOwner returns the key of the extension whose trigger won the merge.
func (c *Composed) TriggerOwner(name string) string {
	return c.triggerOwners[name]
}

// Triggers returns the merged trigger names in sorted order.
func (c *Composed) Triggers() []string {
	return slices.Sorted(maps.Keys(c.triggers))
}

// TriggersFor returns the sorted trigger names available on platform.
func (c *Composed) TriggersFor(platform string) []string {
	var names []string
	for name, t := range c.triggers {
		if len(t.Platforms) == 0 || slices.Contains(t.Platforms, platform) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Setups returns the collected setup hooks in composition order.
func (c *Composed) Setups() []SetupHook {
	return slices.Clone(c.setups)
}

// ValidationErrors returns the errors recorded while running validate hooks.
func (c *Composed) ValidationErrors() []error {
	return slices.Clone(c.validationErrors)
}
