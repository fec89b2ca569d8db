/*
# Module: feed/notify.go
Fire-and-forget transient notification interface.

## Linked Modules
(None)

## Tags
feed, notifications

## Exports
Notifier, Severity, LogNotifier

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<this> a code:Module ;
    code:name "feed/notify.go" ;
    code:description "Fire-and-forget transient notification interface" ;
    code:exports :Notifier, :Severity, :LogNotifier ;
    code:tags "feed", "notifications" .
<!-- End LinkedDoc RDF -->
*/
package feed

import "log"

// Severity classifies a transient notification.
type Severity string

const (
	SeverityDefault     Severity = "default"
	SeverityDestructive Severity = "destructive"
)

// Notifier shows a transient message to the user. Calls are
// fire-and-forget; implementations must not block or fail the caller.
type Notifier interface {
	Notify(title, description string, severity Severity)
}

// LogNotifier writes notifications to the process log.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(title, description string, severity Severity) {
	if severity == SeverityDestructive {
		log.Printf("⚠️  %s: %s", title, description)
		return
	}
	log.Printf("🔔 %s: %s", title, description)
}
