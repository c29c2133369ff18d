// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat keeps the transcript for the current project and runs the
// send cycle against the backend.
//
// A transcript is persisted under storage.ChatKey(project.StorageID()) after
// every append. Only one send may be outstanding; a second one is rejected
// with ErrBusy so the transcript order always equals the send order.
package chat
