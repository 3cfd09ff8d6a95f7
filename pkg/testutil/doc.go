// Package testutil provides utilities for testing specinit components.
//
// Key components:
//   - Project: in-memory template checkout built on afero.MemMapFs
//   - FailFs: afero.Fs wrapper that injects read, write and remove failures
//   - ScriptedDriver: prompt.Driver that replays canned answers
//
// All test data should be defined inline, not in external files.
package testutil
