// Package notify writes the user-facing output of bacboot.
//
// Every line is prefixed with a symbol and coloured by its [MessageType]:
// error (✗), warning (⚠), activity (►), success (✔), info (ℹ) and prompt (?).
// Stage titles start with an emoji and are spaced from earlier output by
// [StageSeparatingWriter]. [ProgressGroup] runs independent checks in
// parallel and reports each result on its own line.
package notify
