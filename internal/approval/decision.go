package approval

import "strings"

// Decision is the normalized form of every input that can resolve a request:
// reviewer commands, reviewer reactions, and the owner's confirmation
// reaction. The coordinator never looks at raw emoji or command text.
type Decision int

const (
	DecisionUnknown Decision = iota
	DecisionApprove
	DecisionDeny
	DecisionCancel
	DecisionConfirmMigrate
	DecisionConfirmCancel
)

const (
	emojiYes = "✅"
	emojiNo  = "❌"
)

// Command is a parsed reviewer command.
type Command struct {
	Decision Decision
	UserRef  string
}

// ParseCommand recognizes the reviewer command surface:
// !approve <user-ref>, !deny <user-ref>, !cancel <user-ref>.
// ok is false when content is not a reviewer command at all; a recognized
// command with a missing ref is returned with an empty UserRef so the caller
// can reply with usage help.
func ParseCommand(content string) (Command, bool) {
	fields := strings.Fields(strings.TrimSpace(content))
	if len(fields) == 0 {
		return Command{}, false
	}
	var decision Decision
	switch fields[0] {
	case "!approve":
		decision = DecisionApprove
	case "!deny":
		decision = DecisionDeny
	case "!cancel":
		decision = DecisionCancel
	default:
		return Command{}, false
	}
	cmd := Command{Decision: decision}
	if len(fields) > 1 {
		cmd.UserRef = fields[1]
	}
	return cmd, true
}

// ResolveUserRef turns a user reference (`<@123>`, `<@!123>`, or a bare id)
// into a user id.
func ResolveUserRef(ref string) (string, bool) {
	id := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(ref, "<@"), "!"), ">")
	if id == "" {
		return "", false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return id, true
}

// reviewerDecision maps a reaction on the approval message.
func reviewerDecision(emoji string) (Decision, bool) {
	switch emoji {
	case emojiYes:
		return DecisionApprove, true
	case emojiNo:
		return DecisionDeny, true
	}
	return DecisionUnknown, false
}

// confirmDecision maps the owner's reaction on the confirmation prompt.
func confirmDecision(emoji string) (Decision, bool) {
	switch emoji {
	case emojiYes:
		return DecisionConfirmMigrate, true
	case emojiNo:
		return DecisionConfirmCancel, true
	}
	return DecisionUnknown, false
}
