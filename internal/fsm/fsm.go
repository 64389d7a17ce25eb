// Package fsm defines the translation pipeline state machine.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle         State = "idle"
	StateRecording    State = "recording"
	StateTranscribing State = "transcribing"
	StateTranslating  State = "translating"
	StateSynthesizing State = "synthesizing"
	StatePlaying      State = "playing"
	StateError        State = "error"
)

const (
	EventStart       Event = "start"
	EventStop        Event = "stop"
	EventCancel      Event = "cancel"
	EventEmpty       Event = "empty"
	EventTranscribed Event = "transcribed"
	EventTranslated  Event = "translated"
	EventSynthesized Event = "synthesized"
	EventPlayed      Event = "played"
	EventFail        Event = "fail"
	EventReset       Event = "reset"
)

// Transition applies one event to a state and returns the successor.
// EventFail is accepted from every state and EventCancel from every
// non-idle state, so a failing or shutting-down session can always unwind.
// EventReset returns the machine to idle from the error state.
func Transition(current State, event Event) (State, error) {
	if event == EventFail {
		return StateError, nil
	}
	if event == EventCancel && current != StateIdle {
		return StateIdle, nil
	}

	switch current {
	case StateIdle:
		switch event {
		case EventStart:
			return StateRecording, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateRecording:
		switch event {
		case EventStop:
			return StateTranscribing, nil
		case EventEmpty:
			// Clip below the minimum duration; nothing to process.
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateTranscribing:
		switch event {
		case EventTranscribed:
			return StateTranslating, nil
		case EventEmpty:
			// No speech recognized; quiet completion.
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateTranslating:
		switch event {
		case EventTranslated:
			return StateSynthesizing, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateSynthesizing:
		switch event {
		case EventSynthesized:
			return StatePlaying, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StatePlaying:
		switch event {
		case EventPlayed:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateError:
		switch event {
		case EventReset:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
