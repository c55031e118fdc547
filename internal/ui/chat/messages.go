// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/plauschhq/plausch/internal/archive"
)

// Result messages emitted by the async store commands. Each carries the
// error of the operation; the store itself already holds the new state.

// convsLoadedMsg reports completion of the initial conversation load.
type convsLoadedMsg struct {
	err error
}

// detailLoadedMsg reports completion of a transcript fetch.
type detailLoadedMsg struct {
	id  string
	err error
}

// chatCreatedMsg reports completion of a create.
type chatCreatedMsg struct {
	id  string
	err error
}

// chatDeletedMsg reports completion of a delete.
type chatDeletedMsg struct {
	err error
}

// renameDoneMsg reports completion of a rename push.
type renameDoneMsg struct {
	err error
}

// systemDoneMsg reports completion of a system prompt push.
type systemDoneMsg struct {
	err error
}

// sendDoneMsg reports completion of a message send, success or failure.
// On failure the transcript already carries the notice.
type sendDoneMsg struct {
	id  string
	err error
}

// attachDoneMsg reports completion of an upload batch.
type attachDoneMsg struct {
	err error
}

// detachDoneMsg reports completion of an attachment removal.
type detachDoneMsg struct {
	err error
}

// searchDoneMsg carries archive search results.
type searchDoneMsg struct {
	query   string
	results []archive.SearchResult
	err     error
}

// exportDoneMsg reports completion of a transcript export.
type exportDoneMsg struct {
	path string
	err  error
}
