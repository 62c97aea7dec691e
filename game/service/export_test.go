package service

import "time"

// SetCountdown shortens the pre-game countdown so tests do not wait for
// the real five-second ramp.
func SetCountdown(svc GameService, from int, interval time.Duration) {
	impl := svc.(*gameServiceImpl)
	impl.countdownFrom = from
	impl.countdownInterval = interval
}
