package bridge

import "strings"

// Kind is the command vocabulary a normalized message classifies into.
type Kind int

const (
	KindLogin Kind = iota
	KindLogoff
	KindAuthorize
	KindSend
	KindDefault // whole text is message body to forward
)

// Command is the tagged variant produced once by Classify and consumed by the
// protocol's dispatch. Args is the raw argument text after the verb; for
// KindDefault it is the entire normalized text.
type Command struct {
	Kind Kind
	Args string
}

// verbs in precedence order. A message beginning with a reserved verb is never
// treated as default content, even if that was the user's intent.
var verbs = []struct {
	prefix string
	kind   Kind
}{
	{"/login", KindLogin},
	{"/logoff", KindLogoff},
	{"/authorize", KindAuthorize},
	{"/send", KindSend},
}

// Classify normalizes raw message text and classifies it. Normalization trims
// whitespace and, when the text contains a fenced block, extracts the innermost
// fenced content before classifying.
func Classify(raw string) Command {
	text := Normalize(raw)
	for _, v := range verbs {
		if strings.HasPrefix(text, v.prefix) {
			return Command{Kind: v.kind, Args: strings.TrimSpace(strings.TrimPrefix(text, v.prefix))}
		}
	}
	return Command{Kind: KindDefault, Args: text}
}

// Normalize trims the text and unwraps a ``` fenced block if one is present.
func Normalize(raw string) string {
	text := strings.TrimSpace(raw)
	const fence = "```"
	if start := strings.Index(text, fence); start >= 0 {
		if end := strings.LastIndex(text, fence); end > start {
			text = text[start+len(fence) : end]
		}
	}
	return strings.TrimSpace(text)
}

// Body returns the message body for forward commands: the argument text of
// /send, or the whole normalized text for default commands.
func (c Command) Body() string {
	return c.Args
}

// LoginArgs splits the /login arguments into address and password tokens.
// Either may be empty.
func (c Command) LoginArgs() (address, password string) {
	fields := strings.Fields(c.Args)
	if len(fields) > 0 {
		address = fields[0]
	}
	if len(fields) > 1 {
		password = fields[1]
	}
	return address, password
}

// Token returns the one-time token argument of /authorize.
func (c Command) Token() string {
	fields := strings.Fields(c.Args)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
