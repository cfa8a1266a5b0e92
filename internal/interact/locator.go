package interact

import "fmt"

// Locator identifies the target of an operation: either a selector, resolved
// against the current document on each call, or an element handle the caller
// already holds, used as-is.
type Locator struct {
	selector string
	element  *Element
}

// BySelector returns a locator that is re-resolved on every use.
func BySelector(selector string) Locator {
	return Locator{selector: selector}
}

// ByElement returns a locator for an already-resolved handle. Resolution is
// skipped, so keeping the handle fresh is up to the caller.
func ByElement(el Element) Locator {
	return Locator{element: &el}
}

// IsResolved reports whether the locator carries a handle.
func (l Locator) IsResolved() bool {
	return l.element != nil
}

// String describes the locator for logs and errors.
func (l Locator) String() string {
	if l.element != nil {
		if l.element.Node != nil {
			return fmt.Sprintf("element(%s, node=%d)", l.element.Selector, l.element.Node.NodeID)
		}
		return fmt.Sprintf("element(%s)", l.element.Selector)
	}
	return l.selector
}

// URLTarget is the condition WaitURLChange waits for. It is either a literal
// URL, a "changed away from" URL, or an arbitrary predicate.
type URLTarget struct {
	desc  string
	match func(string) bool
}

// URLEquals is satisfied when the location equals url exactly.
func URLEquals(url string) URLTarget {
	return URLTarget{
		desc:  fmt.Sprintf("url == %q", url),
		match: func(current string) bool { return current == url },
	}
}

// URLChangedFrom is satisfied as soon as the location differs from url.
func URLChangedFrom(url string) URLTarget {
	return URLTarget{
		desc:  fmt.Sprintf("url != %q", url),
		match: func(current string) bool { return current != url },
	}
}

// URLWhere is satisfied when fn returns true for the location. desc is used in
// logs and errors.
func URLWhere(desc string, fn func(url string) bool) URLTarget {
	return URLTarget{desc: desc, match: fn}
}

// Matches reports whether url satisfies the target. The zero target never matches.
func (t URLTarget) Matches(url string) bool {
	return t.match != nil && t.match(url)
}

// String describes the target.
func (t URLTarget) String() string {
	if t.desc == "" {
		return "<unset url target>"
	}
	return t.desc
}
