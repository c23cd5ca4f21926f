package apiclient

import "context"

// Call tracks a request started by Go.
type Call struct {
	done chan struct{}
}

// Done is closed after the continuation returned.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the continuation returned.
func (c *Call) Wait() {
	<-c.done
}

// Go runs fn in the background and then invokes exactly one of onSuccess
// and onError, exactly once, on that goroutine. Either may be nil. Calls
// started with Go are not ordered with respect to each other.
//
//	apiclient.Go(ctx, client.GetCurrentUser, showUser, showError)
func Go[T any](ctx context.Context, fn func(context.Context) (T, error), onSuccess func(T), onError func(error)) *Call {
	call := &Call{done: make(chan struct{})}
	go func() {
		defer close(call.done)
		value, err := fn(ctx)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onSuccess != nil {
			onSuccess(value)
		}
	}()
	return call
}
