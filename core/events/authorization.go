package events

const (
	// TypeAuthorizationCreated marks a new label being registered.
	TypeAuthorizationCreated = "authorization.created"
	// TypeAuthorizationDisabled marks a label being disabled.
	TypeAuthorizationDisabled = "authorization.disabled"
	// TypeAuthorizationEnabled marks a label being re-enabled.
	TypeAuthorizationEnabled = "authorization.enabled"
	// TypeSendMsgsAdmitted marks a SendMsgs call passing admission and
	// being assigned an execution id.
	TypeSendMsgsAdmitted = "authorization.sendmsgs.admitted"
	// TypeSendMsgsRejected marks a SendMsgs call failing admission.
	TypeSendMsgsRejected = "authorization.sendmsgs.rejected"
	// TypeCallbackReceived marks a processor callback clearing a pending
	// execution's concurrency slot.
	TypeCallbackReceived = "authorization.callback"
)

// AuthorizationCreated records a new label's registration.
type AuthorizationCreated struct {
	Label string
}

func (AuthorizationCreated) EventType() string { return TypeAuthorizationCreated }

// AuthorizationDisabled records a label being disabled.
type AuthorizationDisabled struct {
	Label string
}

func (AuthorizationDisabled) EventType() string { return TypeAuthorizationDisabled }

// AuthorizationEnabled records a label being re-enabled.
type AuthorizationEnabled struct {
	Label string
}

func (AuthorizationEnabled) EventType() string { return TypeAuthorizationEnabled }

// SendMsgsAdmitted records a successfully admitted execution.
type SendMsgsAdmitted struct {
	Label       string
	ExecutionID uint64
	Sender      string
}

func (SendMsgsAdmitted) EventType() string { return TypeSendMsgsAdmitted }

// SendMsgsRejected records an admission failure and its reason.
type SendMsgsRejected struct {
	Label  string
	Sender string
	Reason string
}

func (SendMsgsRejected) EventType() string { return TypeSendMsgsRejected }

// CallbackReceived records a terminal outcome flowing back from a processor.
type CallbackReceived struct {
	ExecutionID uint64
	Outcome     string
}

func (CallbackReceived) EventType() string { return TypeCallbackReceived }
