// Package builtin provides the control-flow operations every script can use,
// along with a few small utilities.
//
// Combinators run their children through the dispatcher and decide what to
// do from each child's [op.Outcome]:
//
//	And(){ a(); b(); };            // stop at the first non-success
//	Or(){ a(); b(); };             // stop at the first success
//	IfElse(){ cond(); yes(); no(); };
//	While(N = 10){ cond(); body(); };
//
// Scoping operations run their children against a snapshot or a private
// copy: [Transaction] restores state and parameters when a child does not
// succeed, [MaskParameters] isolates the parameter table, and [Fork] runs
// its children in the background on a copy of both.
//
// [ForEachDistinct] and [ForEachRTPlan] split the state into groups, run
// their children once per group, and recombine the groups afterwards.
// [PollDirectories] loads files as they appear and runs its children on
// each new batch.
//
// [CompileScript] compiles a script file with the dispatcher's own
// registry and can run it against the current state.
//
// Use [Registry] to obtain a registry holding all of them.
package builtin
