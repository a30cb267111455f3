// Package app provides the core application service for Wails bindings.
package app

import (
	"fmt"

	"go.aimuz.me/snaptext/internal/types"
)

// Event names for frontend communication.
const (
	EventState  = "state"
	EventNotice = "notice"
	EventBusy   = "extraction-busy"
	EventHotkey = "hotkey-status"
)

// Notices shown to the user.
var (
	noticeNoImage = types.Notice{
		Kind:    types.NoticeWarning,
		Title:   "No Image",
		Message: "No image found in clipboard. Paste a valid screenshot.",
	}
	noticeNoText = types.Notice{
		Kind:    types.NoticeInfo,
		Title:   "No Text",
		Message: "No text found in the image!",
	}
	noticeCopied = types.Notice{
		Kind:    types.NoticeInfo,
		Title:   "Copied",
		Message: "Text copied to clipboard!",
	}
	noticeNoSelection = types.Notice{
		Kind:    types.NoticeWarning,
		Title:   "No Selection",
		Message: "Please select an item to copy.",
	}
)

func errorNotice(err error) types.Notice {
	return types.Notice{
		Kind:    types.NoticeError,
		Title:   "Error",
		Message: fmt.Sprintf("An error occurred: %v", err),
	}
}

func extractionErrorNotice(err error) types.Notice {
	return types.Notice{
		Kind:    types.NoticeError,
		Title:   "Error",
		Message: fmt.Sprintf("An error occurred while extracting text: %v", err),
	}
}
