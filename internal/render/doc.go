// Package render turns a growing model output into size-bounded, markdown
// annotated chunks ready for delivery.
package render
