package ddrouter

import "time"

// ToBlockingResult waits up to timeout for the future to complete.
//
// On success the single value is returned as a one-element slice. A pipeline
// failure is returned as a *BlockingError wrapping it. When the timeout
// elapses first the in-flight request is cancelled and a *TimeoutError is
// returned; a request that completes in the same instant wins over the
// timeout, so the result is never stale or partial. A non-positive timeout
// only checks for an already available result.
//
// The wait reads the future's own completion channel, not its Scheduler, so
// it is safe to call from a callback running on a SerialQueue. Later
// callbacks on that queue wait until it returns.
func (f *Future[T]) ToBlockingResult(timeout time.Duration) ([]T, error) {
	if timeout <= 0 {
		select {
		case <-f.done:
			return f.blockingResult()
		default:
		}
		if f.Cancel() {
			return nil, &TimeoutError{Timeout: timeout}
		}
		return f.blockingResult()
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.blockingResult()
	case <-timer.C:
		if f.Cancel() {
			return nil, &TimeoutError{Timeout: timeout}
		}
		return f.blockingResult()
	}
}

func (f *Future[T]) blockingResult() ([]T, error) {
	value, err := f.Result()
	if err != nil {
		return nil, &BlockingError{Err: err}
	}
	return []T{value}, nil
}
