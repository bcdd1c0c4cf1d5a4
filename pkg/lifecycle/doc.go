/*
Package lifecycle implements the response lifecycle controller.

A Controller owns the state of one session and moves it through
Idle, Loading, Success and Error:

	Idle    --Submit-->     Loading
	Loading --payload-->    Success
	Loading --failure-->    Error
	Success --Regenerate--> Loading
	Error   --Retry-->      Loading

Every trigger bumps a generation counter. A relay result is applied only if its
generation is still current; otherwise it is dropped and ErrSuperseded is
returned to the caller that started it, leaving the visible state untouched.

Side effects (loading indicator, error display, meter, notifications) are sent
to a ports.ActionDispatcher. The controller lock is never held across a relay
call, a dispatch or a hook.
*/
package lifecycle
