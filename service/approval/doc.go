// Package approval implements the human-in-the-loop gate for side-effecting
// skills. A gated run is parked as a pending entry behind an action card and
// resumes only after an explicit user decision.
package approval
