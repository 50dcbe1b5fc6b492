package notify

import "context"

// Messages declares the status texts for a wrapped operation. Zero
// values fall back to generic texts; an empty Error falls back to the
// operation's own error message.
type Messages struct {
	Loading string
	Success string
	Error   string
}

// Run wraps an operation with notifications: loading immediately, then
// success or error on completion, upgrading the same entry. The
// operation's error is returned unchanged so callers keep their normal
// failure handling.
func (r *Relay) Run(ctx context.Context, messages Messages, op func(ctx context.Context) error) error {
	loading := messages.Loading
	if loading == "" {
		loading = "Loading..."
	}
	id := r.Loading(loading)

	if err := op(ctx); err != nil {
		text := messages.Error
		if text == "" {
			text = err.Error()
		}
		r.Error(text, id)
		return err
	}

	text := messages.Success
	if text == "" {
		text = "Success!"
	}
	r.Success(text, id)
	return nil
}
