package msg

import (
	"github.com/addonify/core/internal/corerr"
	"github.com/addonify/core/internal/types"
)

// Event is implemented by every outbound-only message: the runtime
// broadcasts these as-is to the event stream in addition to any
// NewModel notification (§4.1 step 5).
type Event interface {
	Msg
	isEvent()
}

type eventBase struct{}

func (eventBase) isMsg()   {}
func (eventBase) isEvent() {}

type EventUserAuthenticated struct {
	eventBase
	Request types.AuthRequest
}

type EventUserLoggedOut struct{ eventBase }

type EventSessionDeleted struct{ eventBase }

type EventCtxPulledFromStorage struct{ eventBase }

type EventLibraryPersisted struct{ eventBase }

type EventLibrarySynced struct{ eventBase }

type EventAddonInstalled struct {
	eventBase
	TransportURL string
}

type EventAddonUninstalled struct {
	eventBase
	TransportURL string
}

type EventSettingsUpdated struct{ eventBase }

// EventError wraps a CtxError/ResourceError together with the Event that
// was being produced when the error occurred, so tests can introspect
// "what were we trying to do" (§4.2 "Errors nested inside Event carry the
// originating Event as source").
type EventError struct {
	eventBase
	Error  corerr.CoreError
	Source Event
}
