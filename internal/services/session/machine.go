package session

import (
	"time"

	"github.com/luckynine/backend/internal/dependencies/random"
	"github.com/luckynine/backend/internal/model"
)

// Result describes what a call to Advance did to a session
type Result struct {
	// Activated is true if the session moved WAITING -> ACTIVE
	Activated bool
	// Ended is true if the session reached ENDED (draw or inactivity)
	Ended bool
	// WinningNumber is the drawn number when Ended is true
	WinningNumber int
	// Winners are the players whose chosen number matched the draw
	Winners []*model.Player
	// Events to emit for this transition, in order
	Events []model.Event
}

// Changed returns true if Advance mutated the session
func (r Result) Changed() bool {
	return r.Activated || r.Ended
}

// Advance applies the time-driven transition rules to a session, mutating it
// in place. Checks run in a fixed order: inactivity first, then the deadline
// of the current phase. now and rnd are injected so the function is
// deterministic under test and needs no live clock.
//
// An ENDED session permits no further transitions.
func Advance(sess *model.Session, players []*model.Player, now time.Time, cfg Config, rnd random.Random) Result {
	if sess.IsTerminal() {
		return Result{}
	}

	if now.Sub(sess.LastActivityTime) >= cfg.InactivityTimeout {
		return endSession(sess, players, now, rnd)
	}

	switch sess.Status {
	case model.SessionWaiting:
		if now.Sub(sess.StartTime) >= cfg.WaitingDuration {
			sess.Status = model.SessionActive
			sess.StartTime = now
			sess.EndTime = now.Add(cfg.ActiveDuration)
			sess.UpdatedAt = now
			return Result{Activated: true}
		}
	case model.SessionActive:
		if now.After(sess.EndTime) {
			return endSession(sess, players, now, rnd)
		}
	}

	return Result{}
}

// DrawNumber draws a winning number uniformly from {1..9}
func DrawNumber(rnd random.Random) int {
	return rnd.Intn(9) + 1
}

// endSession performs the terminal transition: draw a winning number, find
// the winners among the live players, and build the events to emit.
func endSession(sess *model.Session, players []*model.Player, now time.Time, rnd random.Random) Result {
	winningNumber := DrawNumber(rnd)

	sess.Status = model.SessionEnded
	sess.WinningNumber = winningNumber
	sess.UpdatedAt = now

	var winners []*model.Player
	winnerIDs := []model.UserID{}
	for _, p := range players {
		if p.ChosenNumber == winningNumber {
			winners = append(winners, p)
			winnerIDs = append(winnerIDs, p.UserID)
		}
	}

	events := []model.Event{
		{
			Type:      model.EventSessionEnded,
			Timestamp: now,
			SessionID: sess.ID,
			Payload: model.SessionEndedPayload{
				WinningNumber: winningNumber,
				Winners:       winnerIDs,
			},
		},
	}
	for _, w := range winners {
		events = append(events, model.Event{
			Type:      model.EventPlayerWon,
			Timestamp: now,
			SessionID: sess.ID,
			Payload: model.PlayerWonPayload{
				UserID:       w.UserID,
				ChosenNumber: w.ChosenNumber,
			},
		})
	}

	return Result{
		Ended:         true,
		WinningNumber: winningNumber,
		Winners:       winners,
		Events:        events,
	}
}
