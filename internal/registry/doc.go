// Package registry connects resource modules to the template engine.
//
// A resource module is compiled-in Go code that exports the callables a
// template may invoke. Modules declare their shape up front with a tagged
// Exports value: either a flat set of functions (Funcs) or an object whose
// exported methods form the callables (Contract). The registry resolves both
// into one flat list of named callables, checks their Go signatures once and
// turns them into cty functions that are bound to a participant snapshot for
// each evaluation.
//
// Go signatures are checked when a module is validated, not when it is
// called, so a module whose code and expectations drift apart fails at
// startup.
package registry
