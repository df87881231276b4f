package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/domino14/checkers/strategy"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"new":      {Args: []string{"swap", "random"}},
	"aivsai":   {Args: []string{"on", "off"}},
	"strategy": {Args: []string{"player", "opponent"}},
	"save":     {Options: []string{"-snapshot"}},
	"archive": {
		Args:    []string{"list", "load", "delete"},
		Options: []string{"-snapshot", "-limit"},
	},
	"edit": {Args: []string{"clear", "reset", "set", "remove", "text", "done", "cancel"}},
	"autoplay": {
		Options: []string{"-games", "-threads", "-black", "-red", "-logfile", "-seeds", "-archive"},
	},
	"lookahead": {Args: []string{"default"}},
	"help":      {Args: []string{"move", "edit", "archive", "autoplay", "script"}},
}

var commandNames = []string{
	"help", "new", "show", "move", "moves", "undo", "ai", "debug", "pause", "unpause",
	"aivsai", "strategy", "lookahead", "resign", "draw", "save", "load",
	"archive", "edit", "autoplay", "script", "exit",
}

var boolValues = []string{"true", "false"}
var colorValues = []string{"black", "red"}

// Do implements the readline.AutoComplete interface
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		// unbalanced quotes
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}
		// position of the word being completed, counting the command as 0
		argPos := len(fields)
		if !endsWithSpace {
			argPos--
		}

		switch {
		case strings.HasPrefix(lastCompleteField, "-"):
			switch strings.TrimPrefix(lastCompleteField, "-") {
			case "snapshot", "archive":
				completions = boolValues
			case "black", "red":
				completions = strategy.Names
			}
		case cmdName == "move" && argPos == 1 && c.sc != nil:
			for _, m := range c.sc.game.PossibleMoves() {
				completions = append(completions, m.ShortDescription())
			}
		case cmdName == "strategy" && argPos == 2:
			completions = strategy.Names
		case cmdName == "edit" && argPos == 3 && fields[1] == "set":
			completions = colorValues
		case cmdName == "edit" && argPos == 2 && fields[1] == "done":
			completions = colorValues
		case argPos > 1 && !strings.HasPrefix(prefix, "-"):
			// only the first argument comes from the metadata
		default:
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
