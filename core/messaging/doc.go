// Package messaging routes runtime messages between the popup, the
// background router and the in-page agents.
//
// In-page agents [Hub.Subscribe] and read messages from their channel. The
// popup and keyboard shortcuts go through [Hub.Dispatch] and [Hub.Command].
// openPanel is rewritten to a showPanel broadcast and the toggle-panel
// command becomes togglePanel, which is what the background router does.
package messaging
