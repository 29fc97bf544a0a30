// Package openapi imports strategy definitions from OpenAPI documents. Schemas
// under components.schemas flagged with x-strategy become definitions whose
// properties are the strategy parameters.
package openapi
