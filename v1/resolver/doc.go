// Package resolver derives span names and initial attributes from an
// intercepted call's target object and arguments.
//
// Resolution is total: a Resolver never fails and never panics. Each
// registry entry may carry a Template; when the template errors or panics the
// resolver falls back to its built-in rule table, and finally to the raw
// method identifier.
//
// Built-in rules, tried in order for the call's span kind:
//
//	root    "<Type> Execution: <Name field or Type>"
//	nested  first string argument, else the target's type name
//	leaf    identifying field of the target (Name, ID, Role, Description), else type name
package resolver
