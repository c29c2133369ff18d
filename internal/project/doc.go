// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package project owns the current project, the preview surface, the cached
// project list, and project export and import.
//
// The controller never talks to the chat or navigation controllers. It
// publishes events.ProjectChanged and events.ProjectsListed on the bus and
// the bootstrap wires the reactions.
package project
