// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the client-side conversation state and keeps it in
// sync with the backend.
//
// The Store is the single authority over which conversations exist, which
// one is active and what each transcript contains. The UI reads snapshots
// and never mutates state directly; every mutation goes through a store
// operation that talks to the backend and reconciles the local picture
// with whatever the server persisted.
//
// Failed sends never retry on their own. The failure is written into the
// transcript as a synthetic assistant message and the user decides what to
// do next.
package store
