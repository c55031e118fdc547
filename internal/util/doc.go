// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across the plausch client:
// width-aware string truncation and padding for terminal rendering, and
// atomic file writes for the local state files.
package util
