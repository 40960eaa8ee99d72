// Package schema loads interview schemas from JSON or YAML documents and
// ships the default life-insurance questionnaire. It also projects a schema
// onto an OpenAPI object schema so collected answers can be checked for
// conformance before submission.
package schema
