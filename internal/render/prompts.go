package render

import "strings"

// Placeholder marks where the user's prompt is substituted in a template.
const Placeholder = "{{PROMPT}}"

// Prompts holds the three views of a job's prompt and the display mode.
type Prompts struct {
	// ShowPromptTemplate selects template mode; otherwise only the user's
	// prompt and the response are shown (decoupled mode).
	ShowPromptTemplate bool
	// Processed is Template with every placeholder replaced by User.
	Processed string
	User      string
	Template  string
}

// NewPrompts substitutes user into template.
func NewPrompts(template, user string, showTemplate bool) Prompts {
	return Prompts{
		ShowPromptTemplate: showTemplate,
		Processed:          strings.ReplaceAll(template, Placeholder, user),
		User:               user,
		Template:           template,
	}
}

// Display returns the prompt as shown before generation starts.
func (p Prompts) Display() string {
	if p.ShowPromptTemplate {
		return p.Processed
	}
	return p.User
}

// Markdown renders the raw model output for display. The reference prompt is
// bolded once echoed in full; while the echo is still incomplete the generated
// part is bold and the rest is struck through. Output that diverges from the
// reference is shown verbatim.
func (p Prompts) Markdown(output string) string {
	message, ref := output, p.Processed
	if !p.ShowPromptTemplate {
		message, ref = p.Decouple(output), p.User
	}

	if rest, ok := strings.CutPrefix(message, ref); ok {
		return "**" + ref + "**" + rest
	}
	if ungenerated, ok := strings.CutPrefix(ref, message); ok {
		if message == "" {
			return "~~" + ungenerated + "~~"
		}
		return "**" + message + "**~~" + ungenerated + "~~"
	}
	return message
}

// Decouple strips the template boilerplate from raw output, leaving the
// user's prompt followed by the response.
//
// The template is split once on the placeholder into prefix and suffix. Until
// the prefix has been echoed nothing is visible. If the echo deviates from the
// user's prompt the remainder after the prefix is returned unmodified. While
// the suffix is still being echoed only the user's prompt is visible.
func (p Prompts) Decouple(output string) string {
	prefix, suffix, found := strings.Cut(p.Template, Placeholder)
	if !found {
		prefix, suffix = "", ""
	}

	message, ok := strings.CutPrefix(output, prefix)
	if !ok {
		return ""
	}
	response, ok := strings.CutPrefix(message, p.User)
	if !ok {
		return message
	}
	response, ok = strings.CutPrefix(response, suffix)
	if !ok {
		return p.User
	}

	newline := ""
	if strings.HasSuffix(suffix, "\n") {
		newline = "\n"
	}
	return p.User + newline + response
}
