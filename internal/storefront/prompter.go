package storefront

import "strings"

// formPrompter answers cart dialogs from the posted form. A confirm with no
// answer is recorded so the page can ask and post back.
type formPrompter struct {
	answer string
	asked  string
	alerts []string
}

func newFormPrompter(answer string) *formPrompter {
	return &formPrompter{answer: strings.ToLower(strings.TrimSpace(answer))}
}

func (p *formPrompter) Confirm(message string) bool {
	switch p.answer {
	case "yes", "true", "ok":
		return true
	case "no", "false", "cancel":
		return false
	}
	p.asked = message
	return false
}

func (p *formPrompter) Alert(message string) {
	p.alerts = append(p.alerts, message)
}
