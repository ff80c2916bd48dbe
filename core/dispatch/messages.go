package dispatch

import (
	"fmt"

	"booking-dispatcher/core/models"
)

// Message templates sent over the notification channel. Booking fields are
// passed through verbatim; empty ones get neutral fallbacks so a sparse form
// still produces a readable message.

func offerMessage(c models.Candidate, b models.BookingDetails) string {
	serviceType := fallback(b.ServiceType, "massage")
	city := fallback(b.City, "the city")
	date := fallback(b.Date, "the scheduled time")
	clientName := fallback(b.ClientName, "New Client")
	clientPhone := fallback(b.ClientPhone, "N/A")

	return fmt.Sprintf(
		"Hey %s, you've been booked for a %s in %s at %s. Client: %s (Phone: %s).\n\n"+
			"Please reply with '%s' to confirm this booking or '%s' if you're not available.\nThanks!",
		c.Name, serviceType, city, date, clientName, clientPhone,
		KeywordAccept, KeywordDecline,
	)
}

func acceptConfirmation(c models.Candidate) string {
	return fmt.Sprintf("Thank you for accepting the job, %s! You will be contacted with further details.", c.Name)
}

func declineRecordedNotice() string {
	return "Thank you for your response. We'll notify the next available provider."
}

func exhaustedNotice() string {
	return "Thank you for your response. No more providers available for this job."
}

func noActiveJobNotice() string {
	return "No active job request found for your number."
}

func instructionsNotice() string {
	return fmt.Sprintf("Please reply with '%s' to take this job or '%s' to pass.", KeywordAccept, KeywordDecline)
}

func staleNotice(status models.JobStatus) string {
	if status == models.JobStatusAccepted {
		return "This job has already been accepted by someone else."
	}
	return "This job request is no longer active."
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
