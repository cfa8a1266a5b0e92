package session

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// Functions below run with `this` bound to the target element through
// Runtime.callFunctionOn. Each one is wrapped by onConnected before use.
const (
	jsInspect = `function() {
	const rect = this.getBoundingClientRect();
	const style = window.getComputedStyle(this);
	const visible = rect.width > 0 && rect.height > 0 &&
		style.display !== 'none' && style.visibility !== 'hidden';
	const enabled = !this.disabled && this.getAttribute('aria-disabled') !== 'true';
	return {attached: true, visible: visible, enabled: enabled};
}`

	jsText = `function() {
	const t = this.innerText;
	return (t === undefined || t === null) ? (this.textContent || '') : t;
}`

	jsValue = `function() {
	return (this.value === undefined || this.value === null) ? '' : String(this.value);
}`

	// jsPrepareFill focuses and clears the element. It returns false, leaving
	// the element untouched, when the element cannot receive typed text.
	jsPrepareFill = `function() {
	this.scrollIntoView({block: 'center', inline: 'center'});
	this.focus();
	const editable = this.isContentEditable ||
		('value' in this && !this.readOnly && !this.disabled);
	if (!editable || this.getRootNode().activeElement !== this) {
		return false;
	}
	if ('value' in this) {
		this.value = '';
	} else {
		this.textContent = '';
	}
	this.dispatchEvent(new Event('input', {bubbles: true}));
	return true;
}`

	jsConnected = `function() { return true; }`

	jsReadyState = `document.readyState`
)

// jsAttribute returns a function reading the named attribute, null when absent.
func jsAttribute(name string) string {
	return fmt.Sprintf(`function() { return this.getAttribute(%s); }`, jsString(name))
}

// jsCommitFill returns a function that fires change and reports whether the
// element now holds exactly text.
func jsCommitFill(text string) string {
	return fmt.Sprintf(`function() {
	const got = ('value' in this) ? String(this.value) : this.textContent;
	if (got !== %s) {
		return false;
	}
	this.dispatchEvent(new Event('change', {bubbles: true}));
	return true;
}`, jsString(text))
}

// onConnected guards fn so that a node no longer in the document reports
// {detached: true} instead of running.
func onConnected(fn string) string {
	return `function() {
	if (!this.isConnected) { return {detached: true}; }
	return {detached: false, value: (` + fn + `).call(this)};
}`
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	quoted, err := jsoniter.MarshalToString(s)
	if err != nil {
		// Marshalling a Go string cannot fail.
		panic(fmt.Sprintf("quote %q: %v", s, err))
	}
	return quoted
}
