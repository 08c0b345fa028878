// Package bootstrap implements the two EduPulse operational procedures:
// Setup (provision the isolated environment) and Launch (run the
// application inside it).
//
// Both procedures are strictly sequential and fail fast. Setup is an ordered
// list of steps, each gated on the success of the previous one. Nothing is
// retried and partial state is never rolled back. Every failure is shown to
// the user as a fixed diagnostic, followed by a pause so a console window
// that closes on exit stays readable.
//
// All side effects go through a runner.Runner, so tests can verify which
// external commands were (and were not) attempted.
package bootstrap
