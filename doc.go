// Package skillet provides a declarative skill workflow engine.
//
// The engine matches captured content against skill triggers, executes the
// winning skill's step pipeline through pluggable tool services and gates
// side-effecting skills behind human approval. It comes with service layers
// such as:
//
//   - matcher   - deterministic trigger matching
//   - executor  - step pipeline execution through custom actions
//   - approval  - human-in-the-loop deferral of gated skills
//   - listener  - poll loops resolving approval and review cards
//   - actionlog - persistent record of matches, runs and decisions
//
// Skillet is designed to be embedded in host applications.  End-users
// typically interact with the engine via the high-level Service façade
// exposed by the root package:
//
//	srv := skillet.New()
//	rt  := srv.Runtime()
//	_ = rt.InitializeRegistry(ctx, "skills/url-extract.yaml")
//	result, match, _ := rt.Handle(ctx, "https://example.com/articles/today", nil)
//
// For more details see the individual sub-packages.
package skillet
