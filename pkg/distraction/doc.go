// Package distraction is the driver attentiveness engine.
//
// Each tick the vision pipeline supplies a FrameSignal saying whether the
// driver's face and eyes point at the road. The Analyzer records failing
// ticks in a bounded History, counts them over a trailing window and maps
// the count to a Level (Safe, Warning, Critical, Severe) and its
// Consequence. The Gate turns level changes into AlertEvents, applying a
// cooldown to repeats while letting escalations and recovery through at
// once.
//
// Session ties the two together for one monitored drive:
//
//	s, err := distraction.NewSession(distraction.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	res, err := s.Tick(sig)
//	if errors.Is(err, distraction.ErrInvalidSignal) {
//	    // drop the frame, state is unchanged
//	}
//	if res.Alert != nil {
//	    renderer.Render(ctx, *res.Alert)
//	}
//
// Memory is fixed: the history never holds more than Config.Capacity
// events, however long the session runs.
package distraction
