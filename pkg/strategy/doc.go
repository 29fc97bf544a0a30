// Package strategy holds the strategy data model (definitions, parameter
// schemas, instances) and the dynamic form that turns a parameter schema into
// ordered, editable fields. Edits never write into the owned instance: every
// change produces a new Instance through a shallow copy and is handed to a
// single UpdateFunc.
package strategy
