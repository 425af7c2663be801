// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package lifeui is the bubbletea front end for an in-process
// simulator. It drives the same one-byte command channel an attached
// terminal would — keystrokes become command bytes on the receive
// port, and the transmit stream is decoded back into board frames by
// [Stream] — so the machine under the TUI behaves exactly like the
// machine behind a serial link.
//
// [Model] implements tea.Model. Construct it with [NewModel], wire a
// frame stream from [Stream], and hand it to tea.NewProgram.
package lifeui
