package extension

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/mod/semver"

	werrors "github.com/vango-dev/weave/internal/errors"
)

// Meta identifies an extension.
type Meta struct {
	// Key is the unique identifier. It must be 1-255 characters, start with
	// a letter or digit and contain only letters, digits, '-' and '_'.
	Key         string
	Name        string
	Version     string
	Description string
	Author      string
}

// String returns "key@version", or the key alone.
func (m Meta) String() string {
	if m.Version == "" {
		return m.Key
	}
	return m.Key + "@" + m.Version
}

// ScopeKind selects where an extension applies.
type ScopeKind string

const (
	ScopeGlobal   ScopeKind = "global"
	ScopeRenderer ScopeKind = "renderer"
	ScopePlatform ScopeKind = "platform"
)

// Scope restricts the renderers or platforms an extension's setup runs for.
// A nil Scope is global.
type Scope struct {
	Kind      ScopeKind
	Renderers []string
	Platforms []string
}

// AppliesTo reports whether the scope admits the given renderer ID.
// Platform scopes match a renderer whose ID equals one of the platforms or
// is prefixed by "<platform>:".
func (s *Scope) AppliesTo(rendererID string) bool {
	if s == nil {
		return true
	}
	switch s.Kind {
	case ScopeRenderer:
		return slices.Contains(s.Renderers, rendererID)
	case ScopePlatform:
		for _, p := range s.Platforms {
			if rendererID == p || strings.HasPrefix(rendererID, p+":") {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// DirectiveSetter applies a directive value to a backend node.
type DirectiveSetter func(node any, value any)

// DirectiveResolver resolves a prefixed prop such as "class:active"
// (prefix "class", key "active"). It returns nil when it does not handle
// the directive.
type DirectiveResolver func(prefix, key string, prop any) DirectiveSetter

// RendererProps is the renderer-facing capability bucket.
type RendererProps struct {
	OnDirective     []DirectiveResolver
	Namespaces      map[string]string
	TagNamespaceMap map[string]string
	TagAliases      map[string]string
}

// TriggerEvent is delivered to a trigger handler by the host's event system.
type TriggerEvent struct {
	Name    string
	Target  any
	Payload any
}

// TriggerHandler handles a named trigger.
type TriggerHandler func(ctx context.Context, ev TriggerEvent) error

// Trigger is a named event-handling capability.
type Trigger struct {
	Handler     TriggerHandler
	Description string
	// Platforms limits the trigger; empty means every platform.
	Platforms []string
}

// Capabilities groups the typed capability buckets of a descriptor.
type Capabilities struct {
	RendererProps *RendererProps
	Triggers      map[string]Trigger
}

// Host is the renderer surface visible to setup hooks.
type Host interface {
	RendererID() string
	SetContext(key string, value any)
	Context(key string) any
}

// Lifecycle holds the optional hooks of an extension.
type Lifecycle struct {
	// Setup runs once per renderer, after the renderer is constructed.
	// Long-running work belongs in a goroutine started here; the renderer
	// only observes the synchronous result.
	Setup func(ctx context.Context, host Host) error

	// Validate runs during composition.
	Validate func() error

	OnInstall   func(ctx context.Context) error
	OnUninstall func(ctx context.Context) error
	OnEnable    func(ctx context.Context) error
	OnDisable   func(ctx context.Context) error
}

// Descriptor is one extension. Descriptors are treated as immutable once
// handed to Compose or a Registry.
type Descriptor struct {
	Meta         Meta
	Scope        *Scope
	Permissions  []string
	Capabilities Capabilities
	Lifecycle    Lifecycle
}

var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{0,254}$`)

// ValidateMeta checks the key format and, when set, that Version is a
// semantic version (a leading "v" is optional).
func ValidateMeta(m Meta) error {
	if !keyPattern.MatchString(m.Key) {
		return werrors.New(werrors.CodeInvalidMeta).
			WithSubject(m.Key).
			WithDetail(fmt.Sprintf("key %q must start with a letter or digit and contain only letters, digits, '-' or '_' (max 255)", m.Key))
	}
	if m.Version != "" {
		v := m.Version
		if !strings.HasPrefix(v, "v") {
			v = "v" + v
		}
		if !semver.IsValid(v) {
			return werrors.New(werrors.CodeInvalidMeta).
				WithSubject(m.Key).
				WithDetail(fmt.Sprintf("version %q is not a semantic version", m.Version))
		}
	}
	return nil
}
