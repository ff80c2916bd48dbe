package dispatch

import "strings"

// Reply keywords candidates are asked to answer with.
const (
	KeywordAccept  = "ACCEPT"
	KeywordDecline = "DECLINE"
)

// ReplyKind is the classification of an inbound reply text.
type ReplyKind string

const (
	ReplyAccept       ReplyKind = "accept"
	ReplyDecline      ReplyKind = "decline"
	ReplyUnrecognized ReplyKind = "unrecognized"
)

// ClassifyReply normalizes an inbound text (trim, case-fold) and classifies
// it against the two valid keywords.
func ClassifyReply(text string) ReplyKind {
	switch strings.ToUpper(strings.TrimSpace(text)) {
	case KeywordAccept:
		return ReplyAccept
	case KeywordDecline:
		return ReplyDecline
	}
	return ReplyUnrecognized
}

// Outcome describes what ApplyReply did with an inbound reply.
type Outcome string

const (
	// OutcomeAccepted means the reply finalized the job.
	OutcomeAccepted Outcome = "accepted"
	// OutcomeDeclined means the job advanced to the next candidate.
	OutcomeDeclined Outcome = "declined"
	// OutcomeExhausted means the decline left no candidates to advance to.
	OutcomeExhausted Outcome = "exhausted"
	// OutcomeNoActiveJob means no job is awaiting a reply from the sender.
	OutcomeNoActiveJob Outcome = "no_active_job"
	// OutcomeStale means the job had already left AwaitingResponse by the
	// time the reply was applied. The reply mutated nothing.
	OutcomeStale Outcome = "stale"
	// OutcomeUnrecognized means the text matched neither keyword.
	OutcomeUnrecognized Outcome = "unrecognized"
)
