// Package validation contains the logic for validating request data.
//
// It uses the `validator` library to enforce rules defined in struct tags and
// flattens validation failures into a message the client can act on.
package validation
