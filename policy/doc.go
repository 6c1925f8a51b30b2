// Package policy provides optional declarative rules that can be applied on
// top of a running skill engine - for example to require human approval for
// selected skills or to enforce execution constraints.
package policy
