// Package tmpl compiles and renders text templates.
//
// A template is literal text interleaved with placeholders, which are
// replaced by values from a set of bindings, and tags, which render a block
// of the template conditionally or once per element of a collection.
//
// # Syntax
//
//	{{ name }}                    value of name
//	{{ user.address.city }}       dotted path into nested bindings
//	{% if path %} ... {% end %}   block rendered if the value at path is truthy
//	{% for x in path %} ... {% end %}
//	                              block rendered once per element, with x
//	                              bound to the element
//	\{  \\                        literal '{' and '\'
//
// Whitespace is optional inside delimiters but required between the words of
// a tag. A '{' not followed by '{' or '%' is literal text. Any other character
// following '\' is an error.
//
// # Resolution
//
// Paths are resolved against a stack of scopes. Each for loop iteration
// pushes a scope binding its loop variable, which hides a same-named binding
// of any enclosing loop or of the bindings passed to [Template.Render].
// A path must resolve entirely within a single scope; if it does not, the
// next enclosing scope is tried.
//
// Each segment of a path indexes a map with string keys, calls
// [Fielder.Field], or selects an exported struct field by name or by json
// tag.
//
// # Errors
//
// All errors are [*Error] values. Compile errors carry the [Position] of the
// offending construct; render errors name the variable that could not be
// resolved. Use [errors.Is] with the ErrXxx sentinels to test the [Kind]:
//
//	_, err := tmpl.CompileString(ctx, "{% if x %}")
//	errors.Is(err, tmpl.ErrMissingEndStatement) // true
package tmpl
