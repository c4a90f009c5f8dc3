package flow

// Show selects children while cond is truthy and otherwise when it is not.
// children and otherwise may be RenderFuncs or plain values; otherwise may
// be nil.
func Show(cond any, children any, otherwise any, opts ...Option) *Region {
	check := condition(cond)
	primary := Normalize(children)
	fallback := Normalize(otherwise)

	return newRegion("Show", func() (int, RenderFunc) {
		if check() {
			return 0, primary
		}
		return 1, fallback
	}, opts)
}

// Case is one branch of Choose.
type Case struct {
	// When is a condition: a reactive.Source, func() bool, func() any or a
	// plain value.
	When any

	// Children is rendered when When is the first truthy case.
	Children any
}

// Choose activates the first case, in slice order, whose condition is
// truthy. Later cases are not evaluated. When nothing matches, otherwise is
// used; with no otherwise the region renders nothing.
func Choose(cases []Case, otherwise any, opts ...Option) *Region {
	type branch struct {
		check  func() bool
		render RenderFunc
	}

	branches := make([]branch, len(cases))
	for i, c := range cases {
		branches[i] = branch{check: condition(c.When), render: Normalize(c.Children)}
	}
	fallback := Normalize(otherwise)

	return newRegion("Choose", func() (int, RenderFunc) {
		for i, b := range branches {
			if b.check() {
				return i, b.render
			}
		}
		return len(branches), fallback
	}, opts)
}
