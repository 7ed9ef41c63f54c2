// Package registry keeps the interception rules of one instrumented runtime.
//
// A rule (Entry) names a target type and method, the span kind the call
// produces, and an optional name template. Registering a rule installs a
// wrapper on the matching dispatch.Table binding; UnregisterAll restores
// every original binding exactly.
//
//	reg := registry.New(rt.Methods(), interceptor.Wrapper)
//	if err := reg.RegisterAll(rt.Entries()...); err != nil {
//	    return err
//	}
//	defer reg.UnregisterAll()
//
// Each key is wrapped at most once; registering it again is a configuration
// error rather than a second wrapper.
package registry
