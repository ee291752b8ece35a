/*
Package engine binds templates to resource modules and evaluates them against
participant data.

Preparation happens once per mapping configuration. For every target the
engine loads the template, resolves the module's callables, rejects name
collisions between the module and the general-purpose library and checks that
every function the template calls is provided. The result is an immutable
BoundExpression that can be evaluated for any number of participants.

Evaluation fans out over the BoundExpressions of a cycle and fans back in,
keeping target order. The first failure cancels the rest. Template results are
normalized into records: a list is flattened, an object is one record, null
is no record, and empty objects or nulls inside a list are dropped.

Failures keep their cause. A precondition violation raised by mapping code is
returned unchanged so callers can skip the participant. Everything else is
wrapped in an *EvaluationError naming the target.
*/
package engine
