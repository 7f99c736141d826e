// Package lang compiles automaton scripts into trees of [op.Node].
//
// # Grammar
//
// Informal EBNF:
//
//	Script      → Statement* EOF
//	Statement   → Variable | Invocation | Function
//	Variable    → ('let' ':')? Name '=' Payload ';'
//	Invocation  → Name '(' (Arg (',' Arg)*)? ')' Block? ';'
//	Function    → 'let' ':' Name '(' (Param (',' Param)*)? ')' Block ';'
//	Arg         → Name '=' Value
//	Param       → Name ('=' Value)?
//	Block       → '{' Statement* '}'
//
// Names are runs of letters, digits, '.', '-' and '_'. A '#' outside
// quotes starts a comment running to the end of the line. Single and double
// quotes delimit literals, inside which '\' takes the next character
// verbatim. The final statement of a script may omit its ';' when it is an
// invocation.
//
// # Example
//
//	# Loop until the marker parameter is set.
//	limit = 5;
//
//	let: guarded(cond, body = "True"){
//	    IfElse(){ Expr(Expression = cond); body(); False(); };
//	};
//
//	While(N = limit){
//	    Expr(Expression = 'params.done != "yes"');
//	    Echo(Message = "polling");
//	};
//
// # Scoping
//
// A variable or function is visible to statements that start after it, in
// the same block or a nested one. A bare (unquoted) operation name, argument
// name or argument value equal to a visible variable's name is replaced by
// that variable's value, repeatedly, up to [MaxSubstitutions] passes.
// Calling a function inlines its body with the parameters bound as
// variables; the body sees what was visible where the function was
// defined.
//
// # Resolution
//
// Operation and argument names are matched against the registry by
// [Score]. A case-insensitive exact match is silent, a match scoring at
// least [Accept] is used with a warning, and anything else is an error.
package lang
