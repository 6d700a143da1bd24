package services

import "context"

// LogWriter is the audit sink shared by the mutating services.
type LogWriter interface {
	CreateLog(ctx context.Context, eventID *string, action string, outcome string, message *string) error
}
