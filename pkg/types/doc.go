// Package types defines the Plan record, period types, the PlanStore
// interface, store configuration, and the standard errors shared by every
// planbook backend.
package types
