package session

// Decision is the outcome of a navigation attempt into a protected view.
type Decision int

const (
	// DecisionWait shows a neutral waiting indicator; nothing is redirected or rendered.
	DecisionWait Decision = iota
	// DecisionRedirect sends the user to the sign-in entry point.
	DecisionRedirect
	// DecisionRender renders the protected content.
	DecisionRender
)

func (d Decision) String() string {
	switch d {
	case DecisionWait:
		return "wait"
	case DecisionRedirect:
		return "redirect"
	case DecisionRender:
		return "render"
	default:
		return "unknown"
	}
}

// Decide is the access gate. It holds no state beyond what it reads.
func Decide(st State) Decision {
	if !st.Ready {
		return DecisionWait
	}
	if st.Identity == nil {
		return DecisionRedirect
	}
	return DecisionRender
}
