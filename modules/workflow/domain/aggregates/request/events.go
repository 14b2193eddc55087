package request

// Domain events published on the application event bus after the
// corresponding transaction commits.

type DraftSavedEvent struct {
	Result Request
}

type SubmittedEvent struct {
	Result Request
}

type DecidedEvent struct {
	Result        Request
	Role          Role
	ApproverEmail string
	Approved      bool
}

type WithdrawnEvent struct {
	Result Request
}

type DeletedEvent struct {
	RequestID int64
}
