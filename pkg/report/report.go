package report

import (
	"fmt"
	"time"
)

// Reporter receives live progress of plan execution.
type Reporter interface {
	// Info logs general informational messages to the user
	Info(msg string)

	// Warn logs warnings about misconfiguration or recoverable issues.
	Warn(msg string)

	// Error logs non-fatal errors
	Error(msg string)

	// Create reports the start of a resource creation
	Create(name string)

	// Delete reports the start of a resource deletion
	Delete(name string)

	// Skipped reports an operation that was skipped due to previous failures
	Skipped(op, name string)

	// Success reports a completed operation
	Success(op, name string)

	// Fail reports a failed operation
	Fail(op, name string, err error)
}

func timestamp() string {
	return time.Now().Format(time.TimeOnly)
}

type EmojiReporter struct{}

func (r EmojiReporter) Info(msg string) {
	fmt.Printf("%s 📢 %s\n", timestamp(), msg)
}

func (r EmojiReporter) Warn(msg string) {
	fmt.Printf("%s ⚠️  %s\n", timestamp(), msg)
}

func (r EmojiReporter) Error(msg string) {
	fmt.Printf("%s ❌ %s\n", timestamp(), msg)
}

func (r EmojiReporter) Create(name string) {
	fmt.Printf("%s 🔧 Creating: %s\n", timestamp(), name)
}

func (r EmojiReporter) Delete(name string) {
	fmt.Printf("%s 🗑️  Deleting: %s\n", timestamp(), name)
}

func (r EmojiReporter) Skipped(op, name string) {
	fmt.Printf("%s ⏭️ Skipped due to failure: %s %s\n", timestamp(), op, name)
}

func (r EmojiReporter) Success(op, name string) {
	fmt.Printf("%s ✅ Success: %s %s\n", timestamp(), op, name)
}

func (r EmojiReporter) Fail(op, name string, err error) {
	fmt.Printf("%s ❌ Failed: %s %s — %s\n", timestamp(), op, name, err)
}

type PlainReporter struct{}

func (r PlainReporter) Info(msg string) {
	fmt.Printf("%s Info: %s\n", timestamp(), msg)
}

func (r PlainReporter) Warn(msg string) {
	fmt.Printf("%s Warning: %s\n", timestamp(), msg)
}

func (r PlainReporter) Error(msg string) {
	fmt.Printf("%s Error: %s\n", timestamp(), msg)
}

func (r PlainReporter) Create(name string) {
	fmt.Printf("%s Creating: %s\n", timestamp(), name)
}

func (r PlainReporter) Delete(name string) {
	fmt.Printf("%s Deleting: %s\n", timestamp(), name)
}

func (r PlainReporter) Skipped(op, name string) {
	fmt.Printf("%s Skipped due to failure: %s %s\n", timestamp(), op, name)
}

func (r PlainReporter) Success(op, name string) {
	fmt.Printf("%s Success: %s %s\n", timestamp(), op, name)
}

func (r PlainReporter) Fail(op, name string, err error) {
	fmt.Printf("%s Failed: %s %s: %s\n", timestamp(), op, name, err)
}

// NullReporter discards everything. Useful for tests and library callers
// that only care about the returned summary.
type NullReporter struct{}

func (NullReporter) Info(string)                {}
func (NullReporter) Warn(string)                {}
func (NullReporter) Error(string)               {}
func (NullReporter) Create(string)              {}
func (NullReporter) Delete(string)              {}
func (NullReporter) Skipped(string, string)     {}
func (NullReporter) Success(string, string)     {}
func (NullReporter) Fail(string, string, error) {}
