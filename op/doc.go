// Package op defines compiled operations and the dispatcher that runs them.
//
// A script compiles to a tree of [Node] values. Each node names an
// [Operation] held in a [Registry]; the [Dispatcher] resolves the name,
// fills in defaults for expected arguments, and calls the operation's
// [Handler] with an [Exec] giving access to the shared state, the parameter
// table, the node's arguments, and its children.
//
// Handlers report an [Outcome] rather than panicking. Control-flow
// operations decide how to sequence their children by inspecting the
// outcomes of running them.
package op
